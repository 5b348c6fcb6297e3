package telegram

import (
	"fmt"
	"sort"
	"strings"

	"ggshop-bot/internal/domain/entity"
	adminUseCase "ggshop-bot/internal/domain/usecase/admin"
	purchaseUseCase "ggshop-bot/internal/domain/usecase/purchase"
)

// maxMessageLen is Telegram's hard limit on message text length.
const maxMessageLen = 4096

// chunkMessage splits text into pieces that fit in one Telegram message,
// preferring newline boundaries so entries are not cut mid-line.
func chunkMessage(text string) []string {
	if len(text) <= maxMessageLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > maxMessageLen {
		cut := strings.LastIndexByte(text[:maxMessageLen], '\n')
		if cut <= 0 {
			cut = maxMessageLen
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

// formatCatalog renders the price list in a stable order.
func formatCatalog(catalog purchaseUseCase.Catalog) string {
	types := make([]string, 0, len(catalog))
	for t := range catalog {
		types = append(types, t)
	}
	sort.Strings(types)

	var sb strings.Builder
	sb.WriteString("Catalog:\n")
	for _, t := range types {
		item := catalog[t]
		fmt.Fprintf(&sb, "  %s - %s, %s each\n", item.Type, item.Title, entity.FormatCents(item.UnitPriceCents))
	}
	return sb.String()
}

// formatHistory renders recent ledger entries, newest first.
func formatHistory(transactions []*entity.Transaction) string {
	if len(transactions) == 0 {
		return "No transactions yet."
	}

	var sb strings.Builder
	sb.WriteString("Recent transactions:\n")
	for _, t := range transactions {
		fmt.Fprintf(&sb, "%s  %s  %s  %s\n",
			t.CreatedAt.Format("02.01 15:04"),
			entity.FormatSignedCents(t.AmountCents),
			t.Kind,
			t.Description)
	}
	return sb.String()
}

// formatReport renders the admin snapshot.
func formatReport(report *adminUseCase.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Users: %d (admins: %d)\n", len(report.Users), report.AdminCount)
	fmt.Fprintf(&sb, "Total balance: %s\n", entity.FormatCents(report.TotalBalanceCents))
	fmt.Fprintf(&sb, "Transactions today: %d\n", report.TodayCount)

	sb.WriteString("\nBalances:\n")
	for _, u := range report.Users {
		name := u.Username
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&sb, "  %d  @%s  %s\n", u.ID, name, u.FormattedBalance())
	}

	if len(report.TodayTransactions) > 0 {
		sb.WriteString("\nToday:\n")
		for _, t := range report.TodayTransactions {
			fmt.Fprintf(&sb, "  %s  user %d  %s  %s\n",
				t.CreatedAt.Format("15:04"),
				t.UserID,
				entity.FormatSignedCents(t.AmountCents),
				t.Kind)
		}
	}
	return sb.String()
}
