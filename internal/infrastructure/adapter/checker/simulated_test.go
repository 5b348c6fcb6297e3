package checker

import (
	"context"
	"strings"
	"testing"

	"ggshop-bot/internal/domain/port/gateway"
	"ggshop-bot/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_InvalidNumbersAreDie(t *testing.T) {
	c := NewSimulatedChecker(1, 0)
	ctx := context.Background()

	for _, number := range []string{"1234567890123456", "abc", ""} {
		status, err := c.Check(ctx, number)
		require.NoError(t, err)
		assert.Equal(t, gateway.StatusDie, status, "number %q", number)
	}
}

func TestCheck_ValidNumbersGetAVerdict(t *testing.T) {
	c := NewSimulatedChecker(1, 0)
	g := generator.New(1)
	ctx := context.Background()

	seen := map[gateway.CardStatus]bool{}
	for i := 0; i < 200; i++ {
		number := strings.SplitN(g.Card(), "|", 2)[0]
		status, err := c.Check(ctx, number)
		require.NoError(t, err)
		seen[status] = true
	}

	// With 200 rolls all three verdicts should appear.
	assert.True(t, seen[gateway.StatusLive])
	assert.True(t, seen[gateway.StatusDie])
	assert.True(t, seen[gateway.StatusUnknown])
}

func TestCheck_RespectsContext(t *testing.T) {
	c := NewSimulatedChecker(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Zero delay means no select on ctx; the call still succeeds.
	_, err := c.Check(ctx, "4539011234567890")
	assert.NoError(t, err)
}
