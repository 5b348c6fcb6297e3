package error

import (
	"errors"
)

// Base error types. Handlers branch on these with errors.Is; everything else
// is treated as an internal error and reported generically.
var (
	// Validation errors: rejected synchronously, no mutation
	ErrInvalidAmount   = errors.New("invalid amount format")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrQuantityTooHigh = errors.New("quantity exceeds the allowed maximum")
	ErrInvalidUserID   = errors.New("user ID must be a non-zero integer")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrUnknownItemType = errors.New("unknown item type")
	ErrUnknownMethod   = errors.New("unknown payment method")

	// ErrInvalidReference is returned when a webhook reference string does not
	// decode to a user id
	ErrInvalidReference = errors.New("malformed payment reference")

	// ErrInvalidSignature is returned when a webhook signature is absent or
	// does not match the shared secret
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrNotAuthorized is returned when a non-admin invokes a privileged
	// operation. Deliberately carries no detail beyond "denied".
	ErrNotAuthorized = errors.New("denied")

	// ErrInsufficientBalance is returned when a debit would exceed the balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUserNotFound is returned when the referenced user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound is returned when no ledger entry matches
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateUser is returned when a user with the same id already exists
	ErrDuplicateUser = errors.New("user already exists")

	// ErrDuplicateDeposit is returned when a deposit with the same provider
	// payment id has already been credited. Webhook retries hit this path.
	ErrDuplicateDeposit = errors.New("deposit already processed")

	// Infrastructure errors: the only ones a caller should retry
	ErrDatabaseConnection = errors.New("database connection error")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrCompensationFailed is escalated when a refund for a failed
	// fulfillment could not be recorded. Never silently dropped.
	ErrCompensationFailed = errors.New("compensating refund failed")

	// ErrInternal is returned for unexpected server-side errors
	ErrInternal = errors.New("internal error")
)

// ErrorCode maps a domain error to a short stable code for API responses.
func ErrorCode(err error) string {
	switch {
	case IsValidationError(err):
		return "INVALID_REQUEST"
	case errors.Is(err, ErrInvalidSignature):
		return "INVALID_SIGNATURE"
	case errors.Is(err, ErrNotAuthorized):
		return "DENIED"
	case errors.Is(err, ErrInsufficientBalance):
		return "INSUFFICIENT_BALANCE"
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, ErrTransactionNotFound):
		return "TRANSACTION_NOT_FOUND"
	case errors.Is(err, ErrDuplicateUser):
		return "DUPLICATE_USER"
	case errors.Is(err, ErrDuplicateDeposit):
		return "DUPLICATE_DEPOSIT"
	case errors.Is(err, ErrDatabaseConnection):
		return "DATABASE_ERROR"
	case errors.Is(err, ErrGatewayUnavailable):
		return "GATEWAY_UNAVAILABLE"
	case errors.Is(err, ErrCompensationFailed):
		return "COMPENSATION_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}

// IsValidationError reports whether the error is a synchronous input rejection.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrQuantityTooHigh) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrUnknownItemType) ||
		errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrInvalidReference)
}

// IsNotFoundError reports whether the error names a missing domain object.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTransactionNotFound)
}

// IsRetryable reports whether the failure is infrastructural and worth
// retrying by the caller. Domain rejections are final.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDatabaseConnection) || errors.Is(err, ErrGatewayUnavailable)
}
