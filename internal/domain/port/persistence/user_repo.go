package persistence

import (
	"context"

	"ggshop-bot/internal/domain/entity"
)

// UserRepository defines essential methods to interact with user data.
type UserRepository interface {
	// GetByID retrieves a user by chat platform id.
	//
	// Possible errors:
	// - ErrUserNotFound: if no user with the id exists
	// - ErrDatabaseConnection: if the database is unreachable
	GetByID(ctx context.Context, id int64) (*entity.User, error)

	// CreateIfAbsent atomically finds or creates a user. A concurrent call
	// with the same id must never produce two rows: the primary-key
	// constraint backs this, and a duplicate insert is resolved to the
	// existing row rather than propagated. The stored username is refreshed
	// when the platform reports a new one.
	//
	// Returns the user and whether a row was created by this call.
	CreateIfAbsent(ctx context.Context, id int64, username string) (*entity.User, bool, error)

	// AdjustBalance adds delta (signed cents) to the user's balance under a
	// row lock and returns the updated user. Purely mechanical: it does not
	// reject negative results, that policy belongs to callers. Must run
	// inside a unit of work together with the transaction append.
	//
	// Possible errors:
	// - ErrUserNotFound
	// - ErrDatabaseConnection
	AdjustBalance(ctx context.Context, id int64, deltaCents int64) (*entity.User, error)

	// SetAdmin flips the admin flag. Only invoked out-of-band at startup
	// from configuration; no chat command reaches this.
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error

	// List returns all users ordered by balance descending, for reporting.
	List(ctx context.Context) ([]*entity.User, error)
}
