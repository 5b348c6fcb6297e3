package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "ggshop-bot/internal/domain/error"
)

// Amounts are stored as int64 cents everywhere. String conversion happens only
// at the edges: parsing user input and rendering chat output. No float ever
// touches a balance.

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// ParseAmount validates a user-entered amount and converts it to cents.
// Accepts "10", "10.5", "10.50" and the comma variant "10,50". Rejects
// negatives, more than two decimal places and anything non-numeric.
func ParseAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}

	// Chat users type decimal commas as often as points.
	amount = strings.ReplaceAll(amount, ",", ".")

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	var integerValue string
	if len(parts) == 1 {
		integerValue = parts[0] + "00"
	} else {
		switch len(parts[1]) {
		case 0:
			integerValue = parts[0] + "00"
		case 1:
			integerValue = parts[0] + parts[1] + "0"
		case 2:
			integerValue = parts[0] + parts[1]
		default:
			return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
		}
	}

	value, err := strconv.ParseInt(integerValue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	return value, nil
}

// FormatCents converts cents to a decimal string: 1015 becomes "10.15",
// -1000 becomes "-10.00".
func FormatCents(amountCents int64) string {
	isNegative := amountCents < 0
	if isNegative {
		amountCents = -amountCents
	}

	amountStr := strconv.FormatInt(amountCents, 10)
	for len(amountStr) < 3 {
		amountStr = "0" + amountStr
	}

	decimalPos := len(amountStr) - 2
	formatted := amountStr[:decimalPos] + "." + amountStr[decimalPos:]

	if isNegative {
		return "-" + formatted
	}
	return formatted
}

// FormatSignedCents is FormatCents with an explicit "+" on non-negative
// amounts, for ledger listings where direction matters.
func FormatSignedCents(amountCents int64) string {
	if amountCents < 0 {
		return FormatCents(amountCents)
	}
	return "+" + FormatCents(amountCents)
}
