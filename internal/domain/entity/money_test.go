package entity

import (
	"testing"

	errs "ggshop-bot/internal/domain/error"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected int64
		}{
			{"100.00", 10000},
			{"0.01", 1},
			{"0.10", 10},
			{"1", 100},
			{"1.5", 150},
			{"10,50", 1050},
			{"1234567.89", 123456789},
			{"0", 0},
			{" 25 ", 2500},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				cents, err := ParseAmount(tc.input)
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, cents)
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			errorType   error
			description string
		}{
			{"", errs.ErrInvalidAmount, "Empty string"},
			{"   ", errs.ErrInvalidAmount, "Whitespace only"},
			{"-1.00", errs.ErrNegativeAmount, "Negative amount"},
			{"1.234", errs.ErrInvalidAmount, "Too many decimal places"},
			{"abc", errs.ErrInvalidAmount, "Non-numeric"},
			{"1.00.00", errs.ErrInvalidAmount, "Multiple decimal points"},
			{"$100", errs.ErrInvalidAmount, "Currency symbol"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseAmount(tc.input)
				assert.Error(t, err)
				assert.ErrorIs(t, err, tc.errorType)
			})
		}
	})
}

func TestFormatCents(t *testing.T) {
	testCases := []struct {
		cents    int64
		expected string
	}{
		{10000, "100.00"},
		{1, "0.01"},
		{10, "0.10"},
		{1015, "10.15"},
		{0, "0.00"},
		{-1000, "-10.00"},
		{-1, "-0.01"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatCents(tc.cents))
		})
	}
}

func TestFormatSignedCents(t *testing.T) {
	assert.Equal(t, "+10.00", FormatSignedCents(1000))
	assert.Equal(t, "-10.00", FormatSignedCents(-1000))
	assert.Equal(t, "+0.00", FormatSignedCents(0))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 1015, 123456789} {
		parsed, err := ParseAmount(FormatCents(cents))
		assert.NoError(t, err)
		assert.Equal(t, cents, parsed)
	}
}
