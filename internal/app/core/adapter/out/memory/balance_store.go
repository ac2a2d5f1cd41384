package memory

import (
	"context"
	"sync"
	"time"

	"github.com/JoeShih716/go-point-wallet/internal/app/core/domain"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/usecase"
)

// BalanceStore 以 Map 保存使用者點數
//
// 結構:
//
//	points: userID 對應的點數快照
//	mu: RWMutex 保護 points，讀寫各自為原子操作
//	now: 時鐘，測試時可替換
type BalanceStore struct {
	points map[int64]domain.UserPoint
	mu     sync.RWMutex
	now    func() time.Time
}

// StoreOption 定義記憶體 Store 的配置選項函數
type StoreOption func(*BalanceStore)

// WithClock 設定時鐘
func WithClock(now func() time.Time) StoreOption {
	return func(s *BalanceStore) {
		s.now = now
	}
}

// NewBalanceStore 建立一個新的 BalanceStore 實例
func NewBalanceStore(opts ...StoreOption) *BalanceStore {
	s := &BalanceStore{
		points: make(map[int64]domain.UserPoint),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get 取得使用者點數，不存在時合成一筆餘額為 0 的快照 (不會寫入 Map)
func (s *BalanceStore) Get(_ context.Context, userID int64) (*domain.UserPoint, error) {
	s.mu.RLock()
	p, ok := s.points[userID]
	s.mu.RUnlock()
	if !ok {
		return domain.EmptyUserPoint(userID, s.now().UnixMilli()), nil
	}
	return &p, nil
}

// Set 覆寫使用者點數
// 時間戳取 max(now, 前一次時間戳)，時鐘回撥時 UpdateMillis 也不會倒退
func (s *BalanceStore) Set(_ context.Context, userID int64, point int64) (*domain.UserPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().UnixMilli()
	if prev, ok := s.points[userID]; ok && prev.UpdateMillis > stamp {
		stamp = prev.UpdateMillis
	}
	p := domain.UserPoint{
		ID:           userID,
		Point:        point,
		UpdateMillis: stamp,
	}
	s.points[userID] = p
	return &p, nil
}

var _ usecase.BalanceStore = (*BalanceStore)(nil)
