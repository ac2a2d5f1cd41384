package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/JoeShih716/go-point-wallet/internal/app/core/domain"
	"github.com/JoeShih716/go-point-wallet/internal/metrics"
	"github.com/JoeShih716/go-point-wallet/pkg/keyedlock"
)

// CoreUseCase 是點數帳本的核心業務邏輯層
//
// 結構:
//
//	balances: 餘額儲存
//	histories: 交易紀錄儲存
//	locks: 以 userID 為 key 的互斥鎖，同一使用者的 charge/use 依序執行
//	journal: 可選的 Write-Ahead Journal
type CoreUseCase struct {
	balances  BalanceStore
	histories HistoryStore
	locks     *keyedlock.KeyedLock[int64]
	journal   Journal
	log       *log.Helper
}

// Option 定義 CoreUseCase 的配置選項函數
type Option func(*CoreUseCase)

// WithJournal 設定交易提交前寫入的 Journal
func WithJournal(j Journal) Option {
	return func(c *CoreUseCase) {
		c.journal = j
	}
}

// WithLocker 使用外部建立的 KeyedLock (例如與其他元件共用)
func WithLocker(l *keyedlock.KeyedLock[int64]) Option {
	return func(c *CoreUseCase) {
		c.locks = l
	}
}

// NewCoreUseCase 建立一個新的 CoreUseCase 實例
//
// 參數:
//
//	balances: 餘額儲存
//	histories: 交易紀錄儲存
//	logger: 日誌
//	opts: 可選配置
//
// 回傳:
//
//	*CoreUseCase: CoreUseCase 實例
func NewCoreUseCase(balances BalanceStore, histories HistoryStore, logger log.Logger, opts ...Option) *CoreUseCase {
	c := &CoreUseCase{
		balances:  balances,
		histories: histories,
		log:       log.NewHelper(log.With(logger, "module", "usecase/core")),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.locks == nil {
		c.locks = keyedlock.New[int64]()
	}
	return c
}

// Charge 充值
//
// 參數:
//
//	ctx: 上下文
//	userID: 使用者 ID
//	amount: 充值點數，必須大於 0
//
// 回傳:
//
//	*domain.UserPoint: 充值後的點數
//	error: domain.ErrInvalidAmount / domain.ErrPointOverflow 或非預期錯誤
func (c *CoreUseCase) Charge(ctx context.Context, userID int64, amount int64) (*domain.UserPoint, error) {
	return c.postTransaction(ctx, userID, amount, domain.TransactionTypeCharge)
}

// Use 使用點數
//
// 參數:
//
//	ctx: 上下文
//	userID: 使用者 ID
//	amount: 使用點數，必須大於 0
//
// 回傳:
//
//	*domain.UserPoint: 使用後的點數
//	error: domain.ErrInvalidAmount / domain.ErrInsufficientFunds 或非預期錯誤
func (c *CoreUseCase) Use(ctx context.Context, userID int64, amount int64) (*domain.UserPoint, error) {
	return c.postTransaction(ctx, userID, amount, domain.TransactionTypeUse)
}

// Search 查詢使用者目前點數，不需要鎖
func (c *CoreUseCase) Search(ctx context.Context, userID int64) (*domain.UserPoint, error) {
	return c.balances.Get(ctx, userID)
}

// History 查詢使用者交易紀錄，依時間由新到舊排序，同時間時 ID 大的在前
func (c *CoreUseCase) History(ctx context.Context, userID int64) ([]domain.PointHistory, error) {
	records, err := c.histories.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.PointHistory{}
	}
	slices.SortFunc(records, func(a, b domain.PointHistory) int {
		if n := cmp.Compare(b.UpdateMillis, a.UpdateMillis); n != 0 {
			return n
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return records, nil
}

// postTransaction 處理 charge/use 的共同流程
// PostTransaction -> 驗證金額 -> Lock(userID) -> 讀餘額 -> 計算 -> Journal -> 寫餘額 -> 寫紀錄 -> Unlock
func (c *CoreUseCase) postTransaction(ctx context.Context, userID int64, amount int64, txType domain.TransactionType) (*domain.UserPoint, error) {
	// 0. 金額驗證不需要鎖
	if amount <= 0 {
		c.log.WithContext(ctx).Debugf("reject %s for user %d: amount %d", txType, userID, amount)
		metrics.RecordTransaction(txType.String(), metrics.ResultInvalidAmount)
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidAmount, amount)
	}

	// 1. 取得使用者鎖，所有離開路徑都會釋放
	waitStart := time.Now()
	if err := c.locks.Acquire(ctx, userID); err != nil {
		metrics.RecordTransaction(txType.String(), metrics.ResultError)
		return nil, fmt.Errorf("acquire lock for user %d: %w", userID, err)
	}
	defer c.locks.Release(userID)
	metrics.ObserveLockWait(time.Since(waitStart))

	updated, err := c.commit(ctx, userID, amount, txType)
	if err != nil {
		metrics.RecordTransaction(txType.String(), resultOf(err))
		if domain.IsClientError(err) {
			c.log.WithContext(ctx).Warnf("reject %s for user %d: %v", txType, userID, err)
		} else {
			c.log.WithContext(ctx).Errorf("%s for user %d failed: %v", txType, userID, err)
		}
		return nil, err
	}

	metrics.RecordTransaction(txType.String(), metrics.ResultCommitted)
	c.log.WithContext(ctx).Debugf("committed %s %d for user %d, point=%d", txType, amount, userID, updated.Point)
	return updated, nil
}

// commit 臨界區內的 讀 -> 驗證 -> 寫 -> 追加紀錄，呼叫端必須持有 userID 的鎖
func (c *CoreUseCase) commit(ctx context.Context, userID int64, amount int64, txType domain.TransactionType) (*domain.UserPoint, error) {
	current, err := c.balances.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load point of user %d: %w", userID, err)
	}

	next, err := current.Apply(txType, amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return nil, fmt.Errorf("%w: balance %d, requested %d", err, current.Point, amount)
		}
		return nil, err
	}

	// 寫入 Journal (Critical Path)，失敗時尚未改動任何狀態
	if c.journal != nil {
		entry := domain.JournalEntry{
			RefID:     uuid.New(),
			UserID:    userID,
			Type:      txType,
			Amount:    amount,
			Point:     next,
			CreatedAt: time.Now(),
		}
		if err := c.journal.Write(entry); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrJournalWriteFailed, err)
		}
	}

	updated, err := c.balances.Set(ctx, userID, next)
	if err != nil {
		return nil, fmt.Errorf("save point of user %d: %w", userID, err)
	}

	if _, err := c.histories.Append(ctx, userID, amount, txType, updated.UpdateMillis); err != nil {
		return nil, fmt.Errorf("append history of user %d: %w", userID, err)
	}
	return updated, nil
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return metrics.ResultInvalidAmount
	case errors.Is(err, domain.ErrInsufficientFunds):
		return metrics.ResultInsufficientFunds
	case errors.Is(err, domain.ErrPointOverflow):
		return metrics.ResultOverflow
	default:
		return metrics.ResultError
	}
}
