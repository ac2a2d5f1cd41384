package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-point-wallet/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/domain"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/usecase"
	"github.com/JoeShih716/go-point-wallet/pkg/keyedlock"
	"github.com/JoeShih716/go-point-wallet/pkg/logger"
	"github.com/JoeShih716/go-point-wallet/pkg/wal"
)

func newCore(t *testing.T, opts ...usecase.Option) (*usecase.CoreUseCase, *memory.HistoryStore) {
	t.Helper()
	histories := memory.NewHistoryStore()
	return usecase.NewCoreUseCase(memory.NewBalanceStore(), histories, logger.Discard(), opts...), histories
}

func TestCharge_FirstCharge(t *testing.T) {
	core, _ := newCore(t)

	p, err := core.Charge(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, int64(100), p.Point)
}

func TestCharge_AddsToExisting(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	_, err := core.Charge(ctx, 1, 100)
	require.NoError(t, err)
	p, err := core.Charge(ctx, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), p.Point)
}

func TestUse_Normal(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	_, err := core.Charge(ctx, 1, 1000)
	require.NoError(t, err)
	_, err = core.Use(ctx, 1, 300)
	require.NoError(t, err)

	p, err := core.Search(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(700), p.Point)
}

func TestUse_MoreThanBalance(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	_, err := core.Charge(ctx, 1, 100)
	require.NoError(t, err)

	_, err = core.Use(ctx, 1, 300)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	p, _ := core.Search(ctx, 1)
	assert.Equal(t, int64(100), p.Point)
	h, _ := core.History(ctx, 1)
	assert.Len(t, h, 1)
}

func TestRejectedAmountsAreNoops(t *testing.T) {
	for _, amount := range []int64{0, -1, -300} {
		core, _ := newCore(t)
		ctx := context.Background()

		_, err := core.Charge(ctx, 1, 500)
		require.NoError(t, err)
		beforePoint, _ := core.Search(ctx, 1)
		beforeHistory, _ := core.History(ctx, 1)

		_, err = core.Charge(ctx, 1, amount)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		_, err = core.Use(ctx, 1, amount)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		afterPoint, _ := core.Search(ctx, 1)
		afterHistory, _ := core.History(ctx, 1)
		assert.Equal(t, beforePoint.Point, afterPoint.Point)
		assert.Equal(t, beforePoint.UpdateMillis, afterPoint.UpdateMillis)
		assert.Equal(t, beforeHistory, afterHistory)
	}
}

func TestCharge_OverflowIsRejected(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	_, err := core.Charge(ctx, 1, 1<<62)
	require.NoError(t, err)
	_, err = core.Charge(ctx, 1, 1<<62)
	assert.ErrorIs(t, err, domain.ErrPointOverflow)

	p, _ := core.Search(ctx, 1)
	assert.Equal(t, int64(1<<62), p.Point)
	h, _ := core.History(ctx, 1)
	assert.Len(t, h, 1)
}

func TestUnseenUserDefaults(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	p, err := core.Search(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, int64(0), p.Point)

	h, err := core.History(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Empty(t, h)

	_, err = core.Use(ctx, 42, 300)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestHistory_OrderedByTimestampDesc(t *testing.T) {
	core, histories := newCore(t)
	ctx := context.Background()
	t0 := time.Now().UnixMilli()

	_, err := histories.Append(ctx, 1, 1000, domain.TransactionTypeCharge, t0)
	require.NoError(t, err)
	_, err = histories.Append(ctx, 1, 300, domain.TransactionTypeUse, t0+60_000)
	require.NoError(t, err)

	h, err := core.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, domain.TransactionTypeUse, h[0].Type)
	assert.Equal(t, domain.TransactionTypeCharge, h[1].Type)
}

func TestHistory_TieBrokenByRecordID(t *testing.T) {
	core, histories := newCore(t)
	ctx := context.Background()

	first, _ := histories.Append(ctx, 1, 10, domain.TransactionTypeCharge, 500)
	second, _ := histories.Append(ctx, 1, 20, domain.TransactionTypeCharge, 500)
	older, _ := histories.Append(ctx, 1, 5, domain.TransactionTypeUse, 400)

	h, err := core.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.Equal(t, second.ID, h[0].ID)
	assert.Equal(t, first.ID, h[1].ID)
	assert.Equal(t, older.ID, h[2].ID)
}

func TestEndToEndScenario(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	_, err := core.Charge(ctx, 1, 1000)
	require.NoError(t, err)
	_, err = core.Charge(ctx, 1, 500)
	require.NoError(t, err)
	p, err := core.Use(ctx, 1, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), p.Point)

	h, err := core.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, h, 3)

	assert.Equal(t, domain.TransactionTypeUse, h[0].Type)
	assert.Equal(t, int64(300), h[0].Amount)
	assert.Equal(t, domain.TransactionTypeCharge, h[1].Type)
	assert.Equal(t, int64(500), h[1].Amount)
	assert.Equal(t, domain.TransactionTypeCharge, h[2].Type)
	assert.Equal(t, int64(1000), h[2].Amount)
	for _, r := range h {
		assert.Equal(t, int64(1), r.UserID)
	}
}

func TestConcurrency_MixedScenario(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	_, err := core.Charge(ctx, 1, 100_000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); _, _ = core.Use(ctx, 1, 10_000) }()
	go func() { defer wg.Done(); _, _ = core.Charge(ctx, 1, 4_000) }()
	go func() { defer wg.Done(); _, _ = core.Use(ctx, 1, 100) }()
	wg.Wait()

	p, err := core.Search(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000-10_000+4_000-100), p.Point)
}

func TestConcurrency_BalanceConservation(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	const (
		initial = 1_000
		charges = 200
		uses    = 200
	)
	_, err := core.Charge(ctx, 7, initial)
	require.NoError(t, err)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		charged     int64
		used        int64
		accepted    int
		unexpectErr error
	)
	record := func(amount int64, isCharge bool, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err == nil:
			accepted++
			if isCharge {
				charged += amount
			} else {
				used += amount
			}
		case errors.Is(err, domain.ErrInsufficientFunds):
		default:
			unexpectErr = err
		}
	}

	for i := 0; i < charges; i++ {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			_, err := core.Charge(ctx, 7, amount)
			record(amount, true, err)
		}(int64(i%7 + 1))
	}
	for i := 0; i < uses; i++ {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			p, err := core.Use(ctx, 7, amount)
			if err == nil {
				assert.GreaterOrEqual(t, p.Point, int64(0))
			}
			record(amount, false, err)
		}(int64(i%11 + 1))
	}
	wg.Wait()

	require.NoError(t, unexpectErr)

	p, err := core.Search(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, initial+charged-used, p.Point)
	assert.GreaterOrEqual(t, p.Point, int64(0))

	h, err := core.History(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, h, accepted+1)
}

func TestConcurrency_NoNegativeBalance(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	_, err := core.Charge(ctx, 3, 100)
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := core.Use(ctx, 3, 10); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	p, _ := core.Search(ctx, 3)
	assert.Equal(t, int64(0), p.Point)
}

func TestConcurrency_CrossUserIndependence(t *testing.T) {
	locks := keyedlock.New[int64]()
	core, _ := newCore(t, usecase.WithLocker(locks))
	ctx := context.Background()

	// 使用者 1 的鎖被其他人持有時，使用者 2 仍能完成
	require.NoError(t, locks.Acquire(ctx, 1))

	done := make(chan *domain.UserPoint, 1)
	go func() {
		p, err := core.Charge(ctx, 2, 200)
		assert.NoError(t, err)
		done <- p
	}()

	select {
	case p := <-done:
		assert.Equal(t, int64(200), p.Point)
	case <-time.After(time.Second):
		t.Fatal("charge for user 2 blocked on user 1's lock")
	}

	locks.Release(1)
	p, err := core.Charge(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), p.Point)
}

func TestCharge_ContextCanceledWhileWaiting(t *testing.T) {
	locks := keyedlock.New[int64]()
	core, _ := newCore(t, usecase.WithLocker(locks))

	require.NoError(t, locks.Acquire(context.Background(), 1))
	defer locks.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := core.Charge(ctx, 1, 100)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, domain.IsClientError(err))

	p, _ := core.Search(context.Background(), 1)
	assert.Equal(t, int64(0), p.Point)
}

func TestJournal_WritesCommittedTransactions(t *testing.T) {
	w, err := wal.NewWAL[domain.JournalEntry](filepath.Join(t.TempDir(), "journal.log"))
	require.NoError(t, err)
	defer w.Close()

	core, _ := newCore(t, usecase.WithJournal(w))
	ctx := context.Background()

	_, err = core.Charge(ctx, 1, 1000)
	require.NoError(t, err)
	_, err = core.Use(ctx, 1, 5000)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	_, err = core.Use(ctx, 1, 300)
	require.NoError(t, err)

	var entries []domain.JournalEntry
	require.NoError(t, w.ReadAll(func(e domain.JournalEntry) error {
		entries = append(entries, e)
		return nil
	}))
	require.Len(t, entries, 2)
	assert.Equal(t, domain.TransactionTypeCharge, entries[0].Type)
	assert.Equal(t, int64(1000), entries[0].Amount)
	assert.Equal(t, int64(1000), entries[0].Point)
	assert.Equal(t, domain.TransactionTypeUse, entries[1].Type)
	assert.Equal(t, int64(300), entries[1].Amount)
	assert.Equal(t, int64(700), entries[1].Point)
	assert.NotEqual(t, entries[0].RefID, entries[1].RefID)
}

type failingJournal struct{}

func (failingJournal) Write(domain.JournalEntry) error { return errors.New("disk full") }

func TestJournal_FailureLeavesNoSideEffects(t *testing.T) {
	core, _ := newCore(t, usecase.WithJournal(failingJournal{}))
	ctx := context.Background()

	_, err := core.Charge(ctx, 1, 100)
	assert.ErrorIs(t, err, domain.ErrJournalWriteFailed)

	p, _ := core.Search(ctx, 1)
	assert.Equal(t, int64(0), p.Point)
	h, _ := core.History(ctx, 1)
	assert.Empty(t, h)
}
