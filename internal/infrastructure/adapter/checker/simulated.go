// Package checker holds card status checker implementations.
package checker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/EClaesson/go-luhn"

	"ggshop-bot/internal/domain/port/gateway"
)

// SimulatedChecker fakes a card verification service. Structurally invalid
// numbers are always DIE; valid ones get a weighted random verdict after a
// short delay that mimics an upstream round trip.
type SimulatedChecker struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	delay time.Duration
}

// NewSimulatedChecker creates a simulated checker. delay bounds the fake
// round trip; zero disables it.
func NewSimulatedChecker(seed int64, delay time.Duration) *SimulatedChecker {
	return &SimulatedChecker{
		rnd:   rand.New(rand.NewSource(seed)),
		delay: delay,
	}
}

// Check classifies a card number as LIVE, DIE or UNKNOWN.
func (c *SimulatedChecker) Check(ctx context.Context, cardNumber string) (gateway.CardStatus, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return gateway.StatusUnknown, ctx.Err()
		}
	}

	valid, err := luhn.IsValid(cardNumber)
	if err != nil || !valid {
		return gateway.StatusDie, nil
	}

	c.mu.Lock()
	roll := c.rnd.Intn(100)
	c.mu.Unlock()

	switch {
	case roll < 30:
		return gateway.StatusLive, nil
	case roll < 85:
		return gateway.StatusDie, nil
	default:
		return gateway.StatusUnknown, nil
	}
}
