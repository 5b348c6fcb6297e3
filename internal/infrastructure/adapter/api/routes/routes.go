package routes

import (
	"net/http"

	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/gateway"
	"ggshop-bot/internal/infrastructure/adapter/api/handler"
	"ggshop-bot/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers one webhook route per configured gateway plus a
// health probe.
func SetupRoutes(
	router *gin.Engine,
	webhookHandler *handler.WebhookHandler,
	gateways []gateway.PaymentGateway,
) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	webhooks := router.Group("/webhooks")
	for _, gw := range gateways {
		webhooks.POST("/"+gw.Provider(), webhookHandler.Handle(gw))
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
}
