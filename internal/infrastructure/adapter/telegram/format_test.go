package telegram

import (
	"strings"
	"testing"
	"time"

	"ggshop-bot/internal/domain/entity"
	adminUseCase "ggshop-bot/internal/domain/usecase/admin"
	purchaseUseCase "ggshop-bot/internal/domain/usecase/purchase"
	"ggshop-bot/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMessage(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		chunks := chunkMessage("hello")
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello", chunks[0])
	})

	t.Run("exactly at the limit", func(t *testing.T) {
		text := strings.Repeat("a", maxMessageLen)
		chunks := chunkMessage(text)
		require.Len(t, chunks, 1)
	})

	t.Run("long text splits on line boundaries", func(t *testing.T) {
		line := strings.Repeat("x", 100)
		var sb strings.Builder
		for i := 0; i < 100; i++ {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		chunks := chunkMessage(sb.String())

		assert.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), maxMessageLen)
		}
		// No line is cut in half.
		for _, chunk := range chunks {
			for _, l := range strings.Split(strings.TrimRight(chunk, "\n"), "\n") {
				if l != "" {
					assert.Equal(t, line, l)
				}
			}
		}
	})

	t.Run("no newlines still splits", func(t *testing.T) {
		text := strings.Repeat("a", maxMessageLen*2+10)
		chunks := chunkMessage(text)
		assert.Len(t, chunks, 3)
		assert.Equal(t, text, strings.Join(chunks, ""))
	})
}

func TestFormatCatalog(t *testing.T) {
	out := formatCatalog(purchaseUseCase.DefaultCatalog(generator.New(1)))
	assert.Contains(t, out, "gg")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "cc")
	assert.Contains(t, out, "15.00")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No transactions yet.", formatHistory(nil))

	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	out := formatHistory([]*entity.Transaction{
		{UserID: 1, Kind: entity.KindDeposit, AmountCents: 1000, Description: "deposit via pix (wegate)", CreatedAt: now},
		{UserID: 1, Kind: entity.KindPurchase, AmountCents: -500, Description: "purchase 1x gg", CreatedAt: now},
	})
	assert.Contains(t, out, "+10.00")
	assert.Contains(t, out, "-5.00")
	assert.Contains(t, out, "deposit via pix (wegate)")
}

func TestFormatReport(t *testing.T) {
	report := &adminUseCase.Report{
		Users: []*entity.User{
			{ID: 2, Username: "rich", Balance: 7000},
			{ID: 1, Username: "", Balance: 1000, IsAdmin: true},
		},
		TotalBalanceCents: 8000,
		AdminCount:        1,
		TodayCount:        3,
	}
	out := formatReport(report)
	assert.Contains(t, out, "Users: 2 (admins: 1)")
	assert.Contains(t, out, "Total balance: 80.00")
	assert.Contains(t, out, "Transactions today: 3")
	assert.Contains(t, out, "@rich")
}
