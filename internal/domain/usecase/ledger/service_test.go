package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	"ggshop-bot/internal/infrastructure/adapter/logger"
	"ggshop-bot/internal/infrastructure/adapter/repository/memory"
	timeProvider "ggshop-bot/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	tp := timeProvider.NewRealTimeProvider()
	store := memory.NewStore(tp)
	svc := NewService(memory.NewUnitOfWork(store), tp, logger.NewNoopLogger())
	return svc, store
}

func seedUser(t *testing.T, store *memory.Store, id int64) {
	t.Helper()
	_, _, err := memory.NewUserRepository(store).CreateIfAbsent(context.Background(), id, "tester")
	require.NoError(t, err)
}

func TestApply_BalanceEqualsSumOfEntries(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, 1)
	ctx := context.Background()

	deltas := []int64{5000, -1200, -800, 2500, -3000, 100}
	kinds := []entity.Kind{
		entity.KindDeposit, entity.KindPurchase, entity.KindPurchase,
		entity.KindAdminAdjustment, entity.KindAdminAdjustment, entity.KindRefund,
	}

	var last *entity.User
	for i, delta := range deltas {
		user, err := svc.Apply(ctx, 1, delta, kinds[i], "entry", nil)
		require.NoError(t, err)
		last = user
	}

	var expected int64
	for _, d := range deltas {
		expected += d
	}
	assert.Equal(t, expected, last.Balance)
	assert.Equal(t, last.Balance, store.SumAmounts(1))
}

func TestApply_ConcurrentNoLostUpdates(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, 1)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		delta := int64(100)
		kind := entity.KindDeposit
		if i%2 == 1 {
			delta = -30
			kind = entity.KindPurchase
		}
		go func(delta int64, kind entity.Kind) {
			defer wg.Done()
			_, err := svc.Apply(context.Background(), 1, delta, kind, "concurrent", nil)
			assert.NoError(t, err)
		}(delta, kind)
	}
	wg.Wait()

	// 25 credits of 100 and 25 debits of 30.
	expected := int64(25*100 - 25*30)
	user, err := memory.NewUserRepository(store).GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, expected, user.Balance)
	assert.Equal(t, expected, store.SumAmounts(1))
}

func TestApply_DuplicatePaymentIDIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, 1)
	ctx := context.Background()

	ref := &entity.PaymentRef{Provider: "wegate", PaymentID: "pay-1", Method: "pix"}

	user, err := svc.Apply(ctx, 1, 1000, entity.KindDeposit, "deposit", ref)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), user.Balance)

	_, err = svc.Apply(ctx, 1, 1000, entity.KindDeposit, "deposit", ref)
	assert.ErrorIs(t, err, errs.ErrDuplicateDeposit)

	assert.Equal(t, int64(1000), store.SumAmounts(1))
}

func TestApply_ConcurrentDuplicatesCreditOnce(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, 1)

	ref := &entity.PaymentRef{Provider: "wegate", PaymentID: "pay-race", Method: "pix"}

	const deliveries = 20
	var wg sync.WaitGroup
	var succeeded, duplicated int
	var mu sync.Mutex

	wg.Add(deliveries)
	for i := 0; i < deliveries; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Apply(context.Background(), 1, 500, entity.KindDeposit, "deposit", ref)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, errs.ErrDuplicateDeposit):
				duplicated++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, deliveries-1, duplicated)
	assert.Equal(t, int64(500), store.SumAmounts(1))
}

func TestApply_UnknownUserRollsBack(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Apply(context.Background(), 99, 1000, entity.KindDeposit, "deposit", nil)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
	assert.Equal(t, int64(0), store.SumAmounts(99))
}

func TestApply_RejectsInvalidInput(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, 1)
	ctx := context.Background()

	_, err := svc.Apply(ctx, 1, 0, entity.KindDeposit, "zero", nil)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)

	_, err = svc.Apply(ctx, 1, 100, entity.Kind("bogus"), "bad kind", nil)
	assert.ErrorIs(t, err, errs.ErrInvalidKind)

	assert.Equal(t, int64(0), store.SumAmounts(1))
}
