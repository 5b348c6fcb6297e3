// Package telegram is the chat front end: a long-polling bot that translates
// commands into usecase calls and renders the results. It owns no business
// rules; every mutation goes through the same services the webhook and admin
// paths use.
package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/gateway"
	adminUseCase "ggshop-bot/internal/domain/usecase/admin"
	depositUseCase "ggshop-bot/internal/domain/usecase/deposit"
	purchaseUseCase "ggshop-bot/internal/domain/usecase/purchase"
	userUseCase "ggshop-bot/internal/domain/usecase/user"
)

const handlerTimeout = 30 * time.Second

// Bot runs the Telegram long-polling loop and dispatches commands.
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *userUseCase.Service
	purchase *purchaseUseCase.Service
	deposit  *depositUseCase.Service
	admin    *adminUseCase.Service
	checker  gateway.StatusChecker
	logger   coreport.Logger

	pollTimeout int
	wg          sync.WaitGroup
}

// NewBot creates a bot over an authorized Telegram API client.
func NewBot(
	api *tgbotapi.BotAPI,
	users *userUseCase.Service,
	purchase *purchaseUseCase.Service,
	deposit *depositUseCase.Service,
	admin *adminUseCase.Service,
	checker gateway.StatusChecker,
	pollTimeout int,
	logger coreport.Logger,
) *Bot {
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Bot{
		api:         api,
		users:       users,
		purchase:    purchase,
		deposit:     deposit,
		admin:       admin,
		checker:     checker,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// handlers to drain. Each update runs in its own goroutine so one slow
// gateway call never blocks other users.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("Telegram bot started", map[string]any{
		"username":     b.api.Self.UserName,
		"poll_timeout": b.pollTimeout,
	})

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.logger.Info("Telegram bot stopped", nil)
			return
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage registers the sender, then dispatches the command. Every
// message counts as an interaction, so the account exists before any handler
// runs.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	userID := msg.From.ID
	username := msg.From.UserName

	if _, err := b.users.Ensure(ctx, userID, username); err != nil {
		b.logger.Error("Failed to register user on interaction", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		b.reply(msg.Chat.ID, "Something went wrong, try again later.")
		return
	}

	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, "I only understand commands. Try /start.")
		return
	}

	args := strings.Fields(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.handleStart(msg)
	case "balance":
		b.handleBalance(ctx, msg)
	case "buy":
		b.handleBuy(ctx, msg, args)
	case "deposit":
		b.handleDeposit(ctx, msg, args)
	case "check":
		b.handleCheck(ctx, msg, args)
	case "history":
		b.handleHistory(ctx, msg)
	case "addbalance":
		b.handleAddBalance(ctx, msg, args)
	case "report":
		b.handleReport(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /start.")
	}
}

// reply sends a plain text message, chunked to Telegram's message size limit.
func (b *Bot) reply(chatID int64, text string) {
	for _, chunk := range chunkMessage(text) {
		out := tgbotapi.NewMessage(chatID, chunk)
		if _, err := b.api.Send(out); err != nil {
			b.logger.Error("Failed to send message", map[string]any{
				"chat_id": chatID,
				"error":   err.Error(),
			})
			return
		}
	}
}

// replyPhoto sends a PNG with a caption, falling back to text when sending
// the photo fails.
func (b *Bot) replyPhoto(chatID int64, png []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "qr.png", Bytes: png})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("Failed to send photo", map[string]any{
			"chat_id": chatID,
			"error":   err.Error(),
		})
		b.reply(chatID, caption)
	}
}
