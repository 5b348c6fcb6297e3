package entity

import (
	"time"

	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
)

// User represents a chat account with a play-money balance.
// The ID is the chat platform's numeric user id and never changes;
// the username is informational and tracks whatever the platform reports.
type User struct {
	ID        int64     // Chat platform user id, primary key
	Username  string    // Display name, mutable
	Balance   int64     // Balance in cents; always equals the sum of the user's transaction amounts
	IsAdmin   bool      // Grants privileged operations; set out-of-band only
	CreatedAt time.Time // When the user was first seen
	UpdatedAt time.Time // When the user was last updated
}

// NewUser creates a user with a zero balance. Users are created lazily on
// first interaction, so there is no initial-balance parameter.
func NewUser(id int64, username string, timeProvider coreport.TimeProvider) (*User, error) {
	if id == 0 {
		return nil, errs.ErrInvalidUserID
	}

	now := timeProvider.Now()
	return &User{
		ID:        id,
		Username:  username,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FormattedBalance returns the balance as a decimal string with 2 places.
func (u *User) FormattedBalance() string {
	return FormatCents(u.Balance)
}

// CanAfford reports whether the balance covers a debit of the given cents.
func (u *User) CanAfford(amountCents int64) bool {
	return u.Balance >= amountCents
}
