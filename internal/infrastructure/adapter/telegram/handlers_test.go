package telegram

import (
	"testing"

	errs "ggshop-bot/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignedAmount(t *testing.T) {
	testCases := []struct {
		input    string
		expected int64
	}{
		{"10", 1000},
		{"+10", 1000},
		{"-10", -1000},
		{"-0.01", -1},
		{"10.50", 1050},
		{"-10,50", -1050},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			cents, err := parseSignedAmount(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cents)
		})
	}

	for _, input := range []string{"", "-", "abc", "10.123"} {
		t.Run("invalid "+input, func(t *testing.T) {
			_, err := parseSignedAmount(input)
			assert.ErrorIs(t, err, errs.ErrInvalidAmount)
		})
	}

	// A second sign after stripping the first reads as a negative amount.
	_, err := parseSignedAmount("--5")
	assert.ErrorIs(t, err, errs.ErrNegativeAmount)
}
