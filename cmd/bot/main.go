package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"

	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/gateway"
	"ggshop-bot/internal/domain/port/persistence"
	adminUseCase "ggshop-bot/internal/domain/usecase/admin"
	depositUseCase "ggshop-bot/internal/domain/usecase/deposit"
	ledgerUseCase "ggshop-bot/internal/domain/usecase/ledger"
	purchaseUseCase "ggshop-bot/internal/domain/usecase/purchase"
	userUseCase "ggshop-bot/internal/domain/usecase/user"
	"ggshop-bot/internal/generator"
	"ggshop-bot/internal/infrastructure/adapter/api/handler"
	"ggshop-bot/internal/infrastructure/adapter/api/routes"
	"ggshop-bot/internal/infrastructure/adapter/checker"
	"ggshop-bot/internal/infrastructure/adapter/database"
	"ggshop-bot/internal/infrastructure/adapter/logger"
	"ggshop-bot/internal/infrastructure/adapter/paymentgateway"
	"ggshop-bot/internal/infrastructure/adapter/repository"
	"ggshop-bot/internal/infrastructure/adapter/telegram"
	timeProvider "ggshop-bot/internal/infrastructure/adapter/time"
	"ggshop-bot/internal/infrastructure/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	appLogger.SetLevel(logger.ParseLevel(cfg.Logger.Level))
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            database.ParsePort(cfg.Database.Port),
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	}

	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// Repositories and the unit of work
	userRepo := repository.NewUserRepository(dbManager.DB(), tp, appLogger)
	txnRepo := repository.NewTransactionRepository(dbManager.DB(), appLogger)
	uow := dbManager.CreateUnitOfWork()

	// Payment gateways
	var gateways []gateway.PaymentGateway
	if cfg.Gateways.Wegate.Enabled {
		gateways = append(gateways, paymentgateway.NewWegateGateway(
			cfg.Gateways.Wegate.BaseURL,
			cfg.Gateways.Wegate.Token,
			cfg.Gateways.Wegate.WebhookSecret,
			cfg.Gateways.Wegate.Timeout,
			appLogger,
		))
	}
	if cfg.Gateways.PagBank.Enabled {
		gateways = append(gateways, paymentgateway.NewPagBankGateway(
			cfg.Gateways.PagBank.BaseURL,
			cfg.Gateways.PagBank.Token,
			cfg.Gateways.PagBank.WebhookSecret,
			cfg.Gateways.PagBank.Timeout,
			appLogger,
		))
	}
	if len(gateways) == 0 {
		appLogger.Warn("No payment gateway enabled, deposits are unavailable", nil)
	}

	// Use cases
	ledgerService := ledgerUseCase.NewService(uow, tp, appLogger)
	userService := userUseCase.NewService(userRepo, txnRepo, appLogger)
	gen := generator.New(time.Now().UnixNano())
	purchaseService := purchaseUseCase.NewService(
		ledgerService,
		userRepo,
		purchaseUseCase.DefaultCatalog(gen),
		cfg.Shop.MaxQuantity,
		cfg.Shop.EnforceSufficiency,
		appLogger,
	)
	depositService := depositUseCase.NewService(gateways, ledgerService, userRepo, appLogger)
	adminService := adminUseCase.NewService(ledgerService, userRepo, txnRepo, tp, appLogger)
	cardChecker := checker.NewSimulatedChecker(time.Now().UnixNano(), 500*time.Millisecond)

	// Seed configured admins. Accounts are created if absent so an admin can
	// be promoted before their first message.
	seedAdmins(cfg.Telegram.AdminIDs, userService, userRepo, appLogger)

	// Webhook HTTP server
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, handler.NewWebhookHandler(depositService, appLogger), gateways)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting webhook server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Webhook server failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	// Telegram bot
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		appLogger.Error("Failed to authorize Telegram bot", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	bot := telegram.NewBot(
		botAPI,
		userService,
		purchaseService,
		depositService,
		adminService,
		cardChecker,
		cfg.Telegram.PollTimeout,
		appLogger,
	)

	botCtx, stopBot := context.WithCancel(context.Background())
	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		bot.Run(botCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...", nil)

	stopBot()
	<-botDone

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Webhook server forced to shutdown", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Exited gracefully", nil)
}

// seedAdmins ensures each configured admin id exists and carries the flag.
func seedAdmins(
	adminIDs []int64,
	users *userUseCase.Service,
	userRepo persistence.UserRepository,
	appLogger coreport.Logger,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, id := range adminIDs {
		if _, err := users.Ensure(ctx, id, ""); err != nil {
			appLogger.Error("Failed to seed admin account", map[string]any{
				"user_id": id,
				"error":   err.Error(),
			})
			continue
		}
		if err := userRepo.SetAdmin(ctx, id, true); err != nil {
			appLogger.Error("Failed to set admin flag", map[string]any{
				"user_id": id,
				"error":   err.Error(),
			})
		}
	}
}
