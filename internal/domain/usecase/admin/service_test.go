package admin

import (
	"context"
	"testing"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	"ggshop-bot/internal/domain/usecase/ledger"
	"ggshop-bot/internal/infrastructure/adapter/logger"
	"ggshop-bot/internal/infrastructure/adapter/repository/memory"
	timeProvider "ggshop-bot/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminID  = int64(1)
	memberID = int64(2)
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	tp := timeProvider.NewRealTimeProvider()
	store := memory.NewStore(tp)
	noop := logger.NewNoopLogger()
	ledgerSvc := ledger.NewService(memory.NewUnitOfWork(store), tp, noop)
	users := memory.NewUserRepository(store)
	svc := NewService(ledgerSvc, users, memory.NewTransactionRepository(store), tp, noop)

	ctx := context.Background()
	_, _, err := users.CreateIfAbsent(ctx, adminID, "admin")
	require.NoError(t, err)
	require.NoError(t, users.SetAdmin(ctx, adminID, true))
	_, _, err = users.CreateIfAbsent(ctx, memberID, "member")
	require.NoError(t, err)

	return svc, store
}

func TestAdjustBalance_Authorization(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	t.Run("non-admin denied", func(t *testing.T) {
		_, err := svc.AdjustBalance(ctx, memberID, memberID, 1000, "self serve")
		assert.ErrorIs(t, err, errs.ErrNotAuthorized)
		assert.Equal(t, int64(0), store.SumAmounts(memberID))
	})

	t.Run("unknown actor denied, not distinguishable", func(t *testing.T) {
		_, err := svc.AdjustBalance(ctx, 999, memberID, 1000, "")
		assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	})
}

func TestAdjustBalance_SignedDeltas(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user, err := svc.AdjustBalance(ctx, adminID, memberID, 5000, "promo credit")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), user.Balance)

	user, err = svc.AdjustBalance(ctx, adminID, memberID, -2000, "overpayment correction")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), user.Balance)
	assert.Equal(t, int64(3000), store.SumAmounts(memberID))

	history, err := memory.NewTransactionRepository(store).ListByUser(ctx, memberID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, txn := range history {
		assert.Equal(t, entity.KindAdminAdjustment, txn.Kind)
		assert.Contains(t, txn.Description, "(by admin)")
	}
}

func TestAdjustBalance_UnknownTarget(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AdjustBalance(context.Background(), adminID, 999, 1000, "")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestBuildReport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdjustBalance(ctx, adminID, memberID, 7000, "seed")
	require.NoError(t, err)
	_, err = svc.AdjustBalance(ctx, adminID, adminID, 1000, "seed")
	require.NoError(t, err)

	t.Run("non-admin denied", func(t *testing.T) {
		_, err := svc.BuildReport(ctx, memberID)
		assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	})

	t.Run("aggregates", func(t *testing.T) {
		report, err := svc.BuildReport(ctx, adminID)
		require.NoError(t, err)

		assert.Len(t, report.Users, 2)
		assert.Equal(t, int64(8000), report.TotalBalanceCents)
		assert.Equal(t, 1, report.AdminCount)
		assert.Equal(t, int64(2), report.TodayCount)
		assert.Len(t, report.TodayTransactions, 2)

		// Ordered by balance descending.
		assert.Equal(t, memberID, report.Users[0].ID)
	})
}
