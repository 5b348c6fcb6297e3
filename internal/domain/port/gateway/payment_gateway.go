package gateway

import (
	"context"
)

// CreateIntentRequest asks a provider to register a payment intent.
// Reference is "<userId>-<uuid>": the only link between the intent and the
// later confirmation, decoded again when the webhook arrives.
type CreateIntentRequest struct {
	AmountCents int64
	Reference   string
	Username    string
}

// Intent is the provider's answer to a created payment intent. Creating an
// intent never touches the ledger.
type Intent struct {
	Provider string // Gateway identifier
	OrderID  string // Provider's order/payment id
	PayCode  string // PIX copy-paste code or card checkout URL
	QRImage  []byte // PNG, may be empty when the provider returns only a code
}

// Notification is a decoded, provider-agnostic "payment succeeded" callback.
type Notification struct {
	Provider    string
	PaymentID   string
	Reference   string
	Method      string
	AmountCents int64
}

// PaymentGateway is implemented once per upstream provider. Adapters are thin:
// faithful emulation of any provider API is a non-goal.
type PaymentGateway interface {
	// Provider returns the gateway identifier used in payment refs.
	Provider() string

	// Method returns the payment method tag offered by this gateway.
	Method() string

	// CreateIntent registers a payment intent upstream. Outbound calls carry
	// a bounded timeout; on failure no local state has changed.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)

	// SignatureHeader names the HTTP header carrying the webhook signature.
	SignatureHeader() string

	// VerifySignature checks the webhook HMAC over the exact raw body bytes
	// in constant time. Returns ErrInvalidSignature on mismatch. With no
	// secret configured the check is skipped (dev fallback).
	VerifySignature(rawBody []byte, signature string) error

	// DecodeNotification parses a webhook body. Returns (nil, nil) for
	// events that are not a successful payment: they are acknowledged and
	// otherwise ignored.
	DecodeNotification(rawBody []byte) (*Notification, error)
}
