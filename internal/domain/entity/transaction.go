package entity

import (
	"fmt"
	"time"

	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
)

// Kind classifies a ledger transaction. The set is closed but new kinds can be
// added without rewriting history: the column is a plain string.
type Kind string

const (
	KindDeposit         Kind = "deposit"
	KindPurchase        Kind = "purchase"
	KindRefund          Kind = "refund"
	KindAdminAdjustment Kind = "admin_adjustment"
)

// IsValidKind validates that a kind is one of the known values.
func IsValidKind(kind Kind) bool {
	switch kind {
	case KindDeposit, KindPurchase, KindRefund, KindAdminAdjustment:
		return true
	}
	return false
}

// PaymentRef correlates a deposit transaction with the upstream payment that
// funded it. Present only on gateway-originated deposits; (Provider, PaymentID)
// is unique across the ledger, which is what makes webhook retries safe.
type PaymentRef struct {
	Provider  string // Gateway identifier, e.g. "wegate", "pagbank"
	PaymentID string // Provider's payment/order id
	Method    string // Payment method tag, e.g. "pix", "card"
}

// Transaction is one append-only ledger entry. Rows are never updated or
// deleted after creation; a mistake is corrected with a compensating entry.
type Transaction struct {
	ID          uint64    // Monotonic sequence number, assigned at insert, never reused
	UserID      int64     // Owning user
	Kind        Kind      // deposit / purchase / refund / admin_adjustment
	AmountCents int64     // Signed: positive credits, negative debits
	Description string    // Human-readable audit note
	Provider    string    // Payment correlation, deposits only
	PaymentID   string    // Payment correlation, deposits only
	Method      string    // Payment correlation, deposits only
	CreatedAt   time.Time // Immutable, orders the audit trail
}

// NewTransaction builds a ledger entry with basic validation. The amount sign
// is not derived from the kind: an admin adjustment may go either way.
func NewTransaction(
	userID int64,
	kind Kind,
	amountCents int64,
	description string,
	ref *PaymentRef,
	timeProvider coreport.TimeProvider,
) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if !IsValidKind(kind) {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidKind, kind)
	}
	if amountCents == 0 {
		return nil, fmt.Errorf("%w: zero amount", errs.ErrInvalidAmount)
	}

	t := &Transaction{
		UserID:      userID,
		Kind:        kind,
		AmountCents: amountCents,
		Description: description,
		CreatedAt:   timeProvider.Now(),
	}
	if ref != nil {
		t.Provider = ref.Provider
		t.PaymentID = ref.PaymentID
		t.Method = ref.Method
	}
	return t, nil
}

// IsCredit returns true if this entry increases the balance.
func (t *Transaction) IsCredit() bool {
	return t.AmountCents > 0
}

// FormattedAmount returns the signed amount as a decimal string.
func (t *Transaction) FormattedAmount() string {
	return FormatSignedCents(t.AmountCents)
}
