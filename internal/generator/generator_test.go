package generator

import (
	"regexp"
	"strings"
	"testing"

	"github.com/EClaesson/go-luhn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ggPattern = regexp.MustCompile(`^GG(-[A-HJ-NP-Z2-9]{4}){3}$`)

func TestGGFormat(t *testing.T) {
	g := New(1)
	for i := 0; i < 100; i++ {
		gg := g.GG()
		assert.Regexp(t, ggPattern, gg)
		assert.NotContains(t, gg, "O")
		assert.NotContains(t, gg, "I")
		assert.NotContains(t, gg, "0")
		assert.NotContains(t, gg, "1")
	}
}

func TestGGDeterministicWithSeed(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.GG(), b.GG())
	}
}

func TestCardFormat(t *testing.T) {
	g := New(1)
	cardPattern := regexp.MustCompile(`^\d{16}\|(0[1-9]|1[0-2])/\d{2}\|\d{3}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, cardPattern, g.Card())
	}
}

func TestCardNumbersPassLuhn(t *testing.T) {
	g := New(7)
	for i := 0; i < 200; i++ {
		card := g.Card()
		number := strings.SplitN(card, "|", 2)[0]

		valid, err := luhn.IsValid(number)
		require.NoError(t, err)
		assert.True(t, valid, "card %s failed Luhn check", number)
	}
}

func TestCardUsesKnownBins(t *testing.T) {
	g := New(3)
	for i := 0; i < 50; i++ {
		number := strings.SplitN(g.Card(), "|", 2)[0]
		found := false
		for _, bin := range cardBins {
			if strings.HasPrefix(number, bin) {
				found = true
				break
			}
		}
		assert.True(t, found, "card %s does not start with a known BIN", number)
	}
}

func TestLuhnCheckDigit(t *testing.T) {
	// 7992739871 + check digit 3 is the classic worked example.
	assert.Equal(t, byte('3'), luhnCheckDigit("7992739871"))
}
