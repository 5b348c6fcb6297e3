package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	qrcode "github.com/skip2/go-qrcode"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
)

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	var sb strings.Builder
	sb.WriteString("Welcome to the GG shop. Everything sold here is synthetic test data.\n\n")
	sb.WriteString(formatCatalog(b.purchase.Catalog()))
	sb.WriteString("\nCommands:\n")
	sb.WriteString("/balance - show your balance\n")
	sb.WriteString("/buy <item> <quantity> - buy items\n")
	sb.WriteString("/deposit <amount> [method] - top up (methods: ")
	sb.WriteString(strings.Join(b.deposit.Methods(), ", "))
	sb.WriteString(")\n")
	sb.WriteString("/check <card> - check a test card\n")
	sb.WriteString("/history - your recent transactions\n")
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	b.reply(msg.Chat.ID, "Balance: "+user.FormattedBalance())
}

func (b *Bot) handleBuy(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		b.reply(msg.Chat.ID, "Usage: /buy <item> <quantity>\n\n"+formatCatalog(b.purchase.Catalog()))
		return
	}

	itemType := strings.ToLower(args[0])
	quantity := 1
	if len(args) >= 2 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			b.reply(msg.Chat.ID, "Quantity must be a whole number.")
			return
		}
		quantity = parsed
	}

	result, err := b.purchase.Buy(ctx, msg.From.ID, itemType, quantity)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your %d item(s):\n\n", len(result.Items))
	for _, item := range result.Items {
		sb.WriteString(item)
		sb.WriteByte('\n')
	}
	sb.WriteString("\nBalance: " + entity.FormatCents(result.BalanceCents))
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleDeposit(ctx context.Context, msg *tgbotapi.Message, args []string) {
	methods := b.deposit.Methods()
	if len(args) < 1 {
		b.reply(msg.Chat.ID, "Usage: /deposit <amount> [method]\nMethods: "+strings.Join(methods, ", "))
		return
	}

	amountCents, err := entity.ParseAmount(args[0])
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}

	method := ""
	if len(args) >= 2 {
		method = strings.ToLower(args[1])
	} else if len(methods) == 1 {
		method = methods[0]
	} else {
		b.reply(msg.Chat.ID, "Pick a method: /deposit "+args[0]+" <"+strings.Join(methods, "|")+">")
		return
	}

	intent, err := b.deposit.CreateIntent(ctx, msg.From.ID, msg.From.UserName, amountCents, method)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}

	caption := fmt.Sprintf("Deposit of %s via %s.\nPay with:\n\n%s\n\nYour balance updates automatically once the payment confirms.",
		entity.FormatCents(amountCents), method, intent.PayCode)

	png := intent.QRImage
	if len(png) == 0 && method == "pix" {
		// Provider returned only the copy-paste code; render the QR locally.
		png, err = qrcode.Encode(intent.PayCode, qrcode.Medium, 512)
		if err != nil {
			b.logger.Warn("Failed to render QR code", map[string]any{"error": err.Error()})
			png = nil
		}
	}

	if len(png) > 0 {
		b.replyPhoto(msg.Chat.ID, png, caption)
		return
	}
	b.reply(msg.Chat.ID, caption)
}

func (b *Bot) handleCheck(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		b.reply(msg.Chat.ID, "Usage: /check <card>")
		return
	}

	// Accept either a bare number or the full "number|MM/YY|CVV" form.
	cardNumber, _, _ := strings.Cut(args[0], "|")

	status, err := b.checker.Check(ctx, cardNumber)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("%s: %s", cardNumber, status))
}

func (b *Bot) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	transactions, err := b.users.History(ctx, msg.From.ID, 10)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	b.reply(msg.Chat.ID, formatHistory(transactions))
}

func (b *Bot) handleAddBalance(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		b.reply(msg.Chat.ID, "Usage: /addbalance <userId> <amount> [note]")
		return
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "User id must be a number.")
		return
	}

	deltaCents, err := parseSignedAmount(args[1])
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}

	note := strings.Join(args[2:], " ")
	user, err := b.admin.AdjustBalance(ctx, msg.From.ID, targetID, deltaCents, note)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("Adjusted %d by %s. New balance: %s",
		targetID, entity.FormatSignedCents(deltaCents), user.FormattedBalance()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) {
	report, err := b.admin.BuildReport(ctx, msg.From.ID)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	b.reply(msg.Chat.ID, formatReport(report))
}

// parseSignedAmount accepts what ParseAmount accepts plus an optional leading
// sign, for admin corrections that go both ways.
func parseSignedAmount(raw string) (int64, error) {
	negative := false
	if strings.HasPrefix(raw, "-") {
		negative = true
		raw = raw[1:]
	} else if strings.HasPrefix(raw, "+") {
		raw = raw[1:]
	}

	cents, err := entity.ParseAmount(raw)
	if err != nil {
		return 0, err
	}
	if negative {
		cents = -cents
	}
	return cents, nil
}

// replyError maps domain errors to user-facing text. Infrastructure detail
// never reaches the chat.
func (b *Bot) replyError(chatID int64, err error) {
	switch {
	case errors.Is(err, errs.ErrNotAuthorized):
		b.reply(chatID, "Denied.")
	case errors.Is(err, errs.ErrInsufficientBalance):
		b.reply(chatID, "Insufficient balance. Top up with /deposit.")
	case errors.Is(err, errs.ErrUnknownItemType):
		b.reply(chatID, "Unknown item. "+formatCatalog(b.purchase.Catalog()))
	case errors.Is(err, errs.ErrInvalidQuantity):
		b.reply(chatID, "Quantity must be a positive whole number.")
	case errors.Is(err, errs.ErrQuantityTooHigh):
		b.reply(chatID, "That's too many at once. "+err.Error())
	case errors.Is(err, errs.ErrInvalidAmount), errors.Is(err, errs.ErrNegativeAmount):
		b.reply(chatID, "Invalid amount. Use a positive number like 10 or 10.50.")
	case errors.Is(err, errs.ErrUnknownMethod):
		b.reply(chatID, "Unknown payment method. Methods: "+strings.Join(b.deposit.Methods(), ", "))
	case errors.Is(err, errs.ErrUserNotFound):
		b.reply(chatID, "User not found.")
	case errors.Is(err, errs.ErrGatewayUnavailable):
		b.reply(chatID, "Payment provider is unavailable right now, try again in a minute.")
	default:
		b.logger.Error("Command failed", map[string]any{
			"chat_id": chatID,
			"error":   err.Error(),
		})
		b.reply(chatID, "Something went wrong, try again later.")
	}
}
