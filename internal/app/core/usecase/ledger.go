package usecase

import (
	"context"

	"github.com/JoeShih716/go-point-wallet/internal/app/core/domain"
)

// BalanceStore 保存每位使用者目前的點數
type BalanceStore interface {
	// Get 取得使用者點數，不存在時回傳餘額為 0 的快照 (不會回傳 nil)
	Get(ctx context.Context, userID int64) (*domain.UserPoint, error)
	// Set 無條件覆寫餘額並更新時間戳，不做任何驗證
	Set(ctx context.Context, userID int64, point int64) (*domain.UserPoint, error)
}

// HistoryStore 保存每位使用者只增不減的交易紀錄
type HistoryStore interface {
	// Append 分配下一個紀錄 ID 並寫入
	Append(ctx context.Context, userID int64, amount int64, txType domain.TransactionType, updateMillis int64) (*domain.PointHistory, error)
	// ListByUser 依插入順序回傳該使用者所有紀錄，沒有紀錄時回傳空 slice
	ListByUser(ctx context.Context, userID int64) ([]domain.PointHistory, error)
}

// Journal 交易提交前寫入的日誌 (pkg/wal.WAL[domain.JournalEntry] 實作此介面)
type Journal interface {
	Write(entry domain.JournalEntry) error
}
