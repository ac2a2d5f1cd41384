package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-point-wallet/internal/app/core/domain"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/usecase"
)

// HistoryStore 以 Map 保存每位使用者的交易紀錄
//
// 結構:
//
//	records: userID 對應的紀錄，依插入順序排列
//	cursor: 最後分配的紀錄 ID (全局遞增 1, 2, 3...)
//	mu: RWMutex 保護上述欄位
type HistoryStore struct {
	records map[int64][]domain.PointHistory
	cursor  int64
	mu      sync.RWMutex
}

// NewHistoryStore 建立一個新的 HistoryStore 實例
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[int64][]domain.PointHistory),
	}
}

// Append 分配下一個紀錄 ID 並寫入
func (s *HistoryStore) Append(_ context.Context, userID int64, amount int64, txType domain.TransactionType, updateMillis int64) (*domain.PointHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursor++
	h := domain.PointHistory{
		ID:           s.cursor,
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		UpdateMillis: updateMillis,
	}
	s.records[userID] = append(s.records[userID], h)
	return &h, nil
}

// ListByUser 回傳紀錄的複本，呼叫端可自由排序
func (s *HistoryStore) ListByUser(_ context.Context, userID int64) ([]domain.PointHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PointHistory, len(s.records[userID]))
	copy(out, s.records[userID])
	return out, nil
}

var _ usecase.HistoryStore = (*HistoryStore)(nil)
