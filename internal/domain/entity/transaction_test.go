package entity

import (
	"context"
	"testing"
	"time"

	errs "ggshop-bot/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time              { return f.t }
func (f fixedTime) Since(t time.Time) time.Duration { return f.t.Sub(t) }
func (f fixedTime) WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

func TestNewTransaction(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tp := fixedTime{t: now}

	t.Run("valid deposit with payment ref", func(t *testing.T) {
		txn, err := NewTransaction(42, KindDeposit, 1000, "deposit via pix (wegate)", &PaymentRef{
			Provider:  "wegate",
			PaymentID: "pay-123",
			Method:    "pix",
		}, tp)
		require.NoError(t, err)
		assert.Equal(t, int64(42), txn.UserID)
		assert.Equal(t, "wegate", txn.Provider)
		assert.Equal(t, "pay-123", txn.PaymentID)
		assert.Equal(t, "pix", txn.Method)
		assert.Equal(t, now, txn.CreatedAt)
		assert.True(t, txn.IsCredit())
	})

	t.Run("valid debit without ref", func(t *testing.T) {
		txn, err := NewTransaction(42, KindPurchase, -1500, "purchase 1x cc", nil, tp)
		require.NoError(t, err)
		assert.Empty(t, txn.Provider)
		assert.Empty(t, txn.PaymentID)
		assert.False(t, txn.IsCredit())
		assert.Equal(t, "-15.00", txn.FormattedAmount())
	})

	t.Run("rejections", func(t *testing.T) {
		_, err := NewTransaction(0, KindDeposit, 1000, "", nil, tp)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)

		_, err = NewTransaction(42, Kind("bogus"), 1000, "", nil, tp)
		assert.ErrorIs(t, err, errs.ErrInvalidKind)

		_, err = NewTransaction(42, KindDeposit, 0, "", nil, tp)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestIsValidKind(t *testing.T) {
	for _, kind := range []Kind{KindDeposit, KindPurchase, KindRefund, KindAdminAdjustment} {
		assert.True(t, IsValidKind(kind))
	}
	assert.False(t, IsValidKind(Kind("withdrawal")))
	assert.False(t, IsValidKind(Kind("")))
}
