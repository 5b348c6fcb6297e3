package gateway

import "context"

// CardStatus is the verdict of a card status check.
type CardStatus string

const (
	StatusLive    CardStatus = "LIVE"
	StatusDie     CardStatus = "DIE"
	StatusUnknown CardStatus = "UNKNOWN"
)

// StatusChecker classifies a card number. The shipped implementation is an
// explicit simulation; a real verification API can be substituted here
// without touching calling code.
type StatusChecker interface {
	Check(ctx context.Context, cardNumber string) (CardStatus, error)
}
