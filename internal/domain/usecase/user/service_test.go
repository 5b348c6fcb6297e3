package user

import (
	"context"
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
	store := memory.NewStore(timeProvider.NewRealTimeProvider())
	svc := NewService(memory.NewUserRepository(store), memory.NewTransactionRepository(store), logger.NewNoopLogger())
	return svc, store
}

func TestEnsure_CreatesWithZeroBalance(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Ensure(context.Background(), 100, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, int64(0), user.Balance)
	assert.False(t, user.IsAdmin)
}

func TestEnsure_IsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.Ensure(ctx, 100, "alice")
	require.NoError(t, err)

	// Simulate an existing balance, then re-ensure.
	_, err = memory.NewUserRepository(store).AdjustBalance(ctx, 100, 2500)
	require.NoError(t, err)

	again, err := svc.Ensure(ctx, 100, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(2500), again.Balance, "re-registration must not reset the balance")
}

func TestEnsure_ConcurrentSameIDCreatesOneUser(t *testing.T) {
	svc, _ := newTestService(t)

	const callers = 30
	var wg sync.WaitGroup
	results := make([]*entity.User, callers)

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			user, err := svc.Ensure(context.Background(), 7, "bob")
			assert.NoError(t, err)
			results[i] = user
		}(i)
	}
	wg.Wait()

	for _, user := range results {
		require.NotNil(t, user)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, int64(0), user.Balance)
	}

	all, err := svc.userRepo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnsure_RefreshesUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ensure(ctx, 5, "oldname")
	require.NoError(t, err)

	user, err := svc.Ensure(ctx, 5, "newname")
	require.NoError(t, err)
	assert.Equal(t, "newname", user.Username)
}

func TestEnsure_RejectsZeroID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Ensure(context.Background(), 0, "ghost")
	assert.ErrorIs(t, err, errs.ErrInvalidUserID)
}

func TestGet_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestHistory(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tp := timeProvider.NewRealTimeProvider()

	_, err := svc.Ensure(ctx, 1, "alice")
	require.NoError(t, err)

	txns := memory.NewTransactionRepository(store)
	for i := 0; i < 15; i++ {
		txn, err := entity.NewTransaction(1, entity.KindDeposit, int64(100*(i+1)), "deposit", nil, tp)
		require.NoError(t, err)
		require.NoError(t, txns.Create(ctx, txn))
	}

	history, err := svc.History(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, history, 10)
	// Newest first.
	assert.Equal(t, int64(1500), history[0].AmountCents)

	_, err = svc.History(ctx, 999, 10)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}
