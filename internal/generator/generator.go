// Package generator produces the synthetic test artifacts sold by the shop.
// Output is deterministic in format only; values come from a non-cryptographic
// random source. Nothing here is a real payment artifact.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Test BIN prefixes for card-like output. Chosen to look plausible, nothing more.
var cardBins = []string{"453901", "531244", "403612", "549167", "376411"}

const ggAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generator produces GG strings and Luhn-valid test card numbers.
// Safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	yearBase int // two-digit year of "next year", lower bound for expiries
}

// New creates a generator seeded from the given value. Pass time.Now().
// UnixNano() in production; a fixed seed makes test output reproducible.
func New(seed int64) *Generator {
	return &Generator{
		rnd:      rand.New(rand.NewSource(seed)),
		yearBase: (time.Now().Year() + 1) % 100,
	}
}

// GG returns one synthetic GG string, e.g. "GG-7KQ2-M4XN-P8R3".
func (g *Generator) GG() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.WriteString("GG")
	for block := 0; block < 3; block++ {
		b.WriteByte('-')
		for i := 0; i < 4; i++ {
			b.WriteByte(ggAlphabet[g.rnd.Intn(len(ggAlphabet))])
		}
	}
	return b.String()
}

// Card returns one synthetic test card in "number|MM/YY|CVV" form.
// The number carries a valid Luhn check digit.
func (g *Generator) Card() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	number := g.cardNumber()
	month := g.rnd.Intn(12) + 1
	year := g.yearBase + g.rnd.Intn(5)
	cvv := g.rnd.Intn(900) + 100

	return fmt.Sprintf("%s|%02d/%02d|%03d", number, month, year, cvv)
}

// cardNumber builds a 16-digit number: BIN + 9 random digits + check digit.
func (g *Generator) cardNumber() string {
	var b strings.Builder
	b.WriteString(cardBins[g.rnd.Intn(len(cardBins))])
	for i := 0; i < 9; i++ {
		b.WriteByte(byte('0' + g.rnd.Intn(10)))
	}
	partial := b.String()
	return partial + string(luhnCheckDigit(partial))
}

// luhnCheckDigit computes the digit that makes partial+digit Luhn-valid.
func luhnCheckDigit(partial string) byte {
	sum := 0
	// Walk right to left; the appended check digit occupies the rightmost
	// position, so the last payload digit is doubled.
	double := true
	for i := len(partial) - 1; i >= 0; i-- {
		d := int(partial[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte('0' + (10-sum%10)%10)
}
