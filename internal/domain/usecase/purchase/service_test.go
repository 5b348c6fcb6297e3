package purchase

import (
	"context"
	"errors"
	"testing"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	"ggshop-bot/internal/domain/usecase/ledger"
	"ggshop-bot/internal/generator"
	"ggshop-bot/internal/infrastructure/adapter/logger"
	"ggshop-bot/internal/infrastructure/adapter/repository/memory"
	timeProvider "ggshop-bot/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    *Service
	store  *memory.Store
	ledger *ledger.Service
}

func newFixture(t *testing.T, catalog Catalog, enforceSufficiency bool) *fixture {
	t.Helper()
	tp := timeProvider.NewRealTimeProvider()
	store := memory.NewStore(tp)
	noop := logger.NewNoopLogger()
	ledgerSvc := ledger.NewService(memory.NewUnitOfWork(store), tp, noop)
	if catalog == nil {
		catalog = DefaultCatalog(generator.New(1))
	}
	svc := NewService(ledgerSvc, memory.NewUserRepository(store), catalog, 10, enforceSufficiency, noop)
	return &fixture{svc: svc, store: store, ledger: ledgerSvc}
}

func (f *fixture) seedUser(t *testing.T, id int64, balanceCents int64) {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepository(f.store)
	_, _, err := users.CreateIfAbsent(ctx, id, "buyer")
	require.NoError(t, err)
	if balanceCents != 0 {
		_, err = f.ledger.Apply(ctx, id, balanceCents, entity.KindDeposit, "seed", nil)
		require.NoError(t, err)
	}
}

func TestBuy_DebitsAndFulfills(t *testing.T) {
	f := newFixture(t, nil, true)
	f.seedUser(t, 1, 5000)

	result, err := f.svc.Buy(context.Background(), 1, "gg", 3)
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, int64(5000-3*1000), result.BalanceCents)
	assert.Equal(t, result.BalanceCents, f.store.SumAmounts(1))
}

func TestBuy_InsufficientBalance(t *testing.T) {
	f := newFixture(t, nil, true)
	f.seedUser(t, 1, 500)

	_, err := f.svc.Buy(context.Background(), 1, "gg", 1)
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
	assert.Equal(t, int64(500), f.store.SumAmounts(1), "rejection must not mutate the ledger")
}

func TestBuy_SufficiencyDisabledAllowsNegative(t *testing.T) {
	f := newFixture(t, nil, false)
	f.seedUser(t, 1, 0)

	result, err := f.svc.Buy(context.Background(), 1, "gg", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-2000), result.BalanceCents)
	assert.Equal(t, int64(-2000), f.store.SumAmounts(1))
}

func TestBuy_ValidationRejections(t *testing.T) {
	f := newFixture(t, nil, true)
	f.seedUser(t, 1, 100000)
	ctx := context.Background()

	_, err := f.svc.Buy(ctx, 1, "nope", 1)
	assert.ErrorIs(t, err, errs.ErrUnknownItemType)

	_, err = f.svc.Buy(ctx, 1, "gg", 0)
	assert.ErrorIs(t, err, errs.ErrInvalidQuantity)

	_, err = f.svc.Buy(ctx, 1, "gg", -3)
	assert.ErrorIs(t, err, errs.ErrInvalidQuantity)

	_, err = f.svc.Buy(ctx, 1, "gg", 11)
	assert.ErrorIs(t, err, errs.ErrQuantityTooHigh)

	_, err = f.svc.Buy(ctx, 999, "gg", 1)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)

	assert.Equal(t, int64(100000), f.store.SumAmounts(1))
}

func TestBuy_FulfillmentFailureRefunds(t *testing.T) {
	genErr := errors.New("entropy source exhausted")
	calls := 0
	catalog := Catalog{
		"flaky": {
			Type:           "flaky",
			Title:          "Flaky item",
			UnitPriceCents: 1000,
			Generate: func() (string, error) {
				calls++
				if calls > 2 {
					return "", genErr
				}
				return "ITEM", nil
			},
		},
	}

	f := newFixture(t, catalog, true)
	f.seedUser(t, 1, 5000)

	_, err := f.svc.Buy(context.Background(), 1, "flaky", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, genErr)
	assert.NotErrorIs(t, err, errs.ErrCompensationFailed)

	// Debit and refund are two separate entries that cancel out.
	user, getErr := memory.NewUserRepository(f.store).GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, int64(5000), user.Balance)

	history, listErr := memory.NewTransactionRepository(f.store).ListByUser(context.Background(), 1, 0)
	require.NoError(t, listErr)
	require.Len(t, history, 3) // seed deposit, debit, refund
	assert.Equal(t, entity.KindRefund, history[0].Kind)
	assert.Equal(t, int64(3000), history[0].AmountCents)
	assert.Equal(t, entity.KindPurchase, history[1].Kind)
	assert.Equal(t, int64(-3000), history[1].AmountCents)
}

func TestDepositThenBuyEndToEnd(t *testing.T) {
	f := newFixture(t, nil, true)
	f.seedUser(t, 1, 0)
	ctx := context.Background()

	// Funded deposit of 50.00 via a gateway payment.
	_, err := f.ledger.Apply(ctx, 1, 5000, entity.KindDeposit, "deposit via pix (wegate)", &entity.PaymentRef{
		Provider:  "wegate",
		PaymentID: "pay-e2e",
		Method:    "pix",
	})
	require.NoError(t, err)

	result, err := f.svc.Buy(ctx, 1, "gg", 3)
	require.NoError(t, err)

	assert.Len(t, result.Items, 3)
	assert.Equal(t, int64(2000), result.BalanceCents)

	history, err := memory.NewTransactionRepository(f.store).ListByUser(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.KindPurchase, history[0].Kind)
	assert.Equal(t, int64(-3000), history[0].AmountCents)
	assert.Equal(t, entity.KindDeposit, history[1].Kind)
	assert.Equal(t, int64(5000), history[1].AmountCents)
}

func TestDefaultCatalogPrices(t *testing.T) {
	catalog := DefaultCatalog(generator.New(1))

	gg, ok := catalog["gg"]
	require.True(t, ok)
	assert.Equal(t, int64(1000), gg.UnitPriceCents)

	cc, ok := catalog["cc"]
	require.True(t, ok)
	assert.Equal(t, int64(1500), cc.UnitPriceCents)

	item, err := gg.Generate()
	require.NoError(t, err)
	assert.Contains(t, item, "GG-")

	card, err := cc.Generate()
	require.NoError(t, err)
	assert.Contains(t, card, "|")
}
