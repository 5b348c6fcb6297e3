package persistence

import (
	"context"
	"time"

	"ggshop-bot/internal/domain/entity"
)

// TransactionRepository defines essential methods to interact with the
// append-only ledger. There is deliberately no Update or Delete.
type TransactionRepository interface {
	// Create appends one ledger entry. The (provider, payment_id) pair on
	// deposit entries is unique; a second insert with the same pair fails
	// with ErrDuplicateDeposit, which is what makes webhook retries safe.
	//
	// Possible errors:
	// - ErrDuplicateDeposit
	// - ErrDatabaseConnection
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByPaymentID retrieves the deposit entry recorded for a provider
	// payment id, used for idempotency pre-checks.
	//
	// Possible errors:
	// - ErrTransactionNotFound
	// - ErrDatabaseConnection
	GetByPaymentID(ctx context.Context, provider, paymentID string) (*entity.Transaction, error)

	// ListByUser returns a user's most recent entries, newest first.
	// limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Transaction, error)

	// ListSince returns all entries created at or after the given instant,
	// oldest first, for same-day reporting.
	ListSince(ctx context.Context, since time.Time) ([]*entity.Transaction, error)

	// CountSince returns the number of entries created at or after the
	// given instant.
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
