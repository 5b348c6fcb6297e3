package handler

import (
	"errors"
	"net/http"

	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/gateway"
	depositUseCase "ggshop-bot/internal/domain/usecase/deposit"
	"ggshop-bot/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives provider payment callbacks. One route per provider;
// each route verifies that provider's signature over the exact raw body before
// anything is parsed.
type WebhookHandler struct {
	depositService *depositUseCase.Service
	logger         coreport.Logger
}

// NewWebhookHandler creates a new webhook handler instance
func NewWebhookHandler(depositService *depositUseCase.Service, logger coreport.Logger) *WebhookHandler {
	return &WebhookHandler{
		depositService: depositService,
		logger:         logger,
	}
}

// Handle returns the gin handler for one provider's webhook route.
func (h *WebhookHandler) Handle(gw gateway.PaymentGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    errs.ErrorCode(errs.ErrInvalidReference),
				Message: "Failed to read request body",
			})
			return
		}

		signature := c.GetHeader(gw.SignatureHeader())
		if err := gw.VerifySignature(rawBody, signature); err != nil {
			h.logger.Warn("Webhook signature rejected", map[string]any{
				"provider": gw.Provider(),
				"ip":       c.ClientIP(),
			})
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    errs.ErrorCode(errs.ErrInvalidSignature),
				Message: "Invalid signature",
			})
			return
		}

		notification, err := gw.DecodeNotification(rawBody)
		if err != nil {
			h.logger.Warn("Webhook body rejected", map[string]any{
				"provider": gw.Provider(),
				"error":    err.Error(),
			})
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    "INVALID_REQUEST",
				Message: "Malformed webhook body",
			})
			return
		}
		if notification == nil {
			// Not a successful payment event. Acknowledge so the provider
			// stops redelivering.
			c.JSON(http.StatusOK, dto.WebhookResponse{Status: "ignored"})
			return
		}

		_, err = h.depositService.Confirm(c.Request.Context(), notification)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, dto.WebhookResponse{Status: "credited"})
		case errors.Is(err, errs.ErrDuplicateDeposit):
			// Retried delivery of an already-credited payment. Acknowledged,
			// nothing changed.
			c.JSON(http.StatusOK, dto.WebhookResponse{Status: "already_processed"})
		case errs.IsValidationError(err):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    errs.ErrorCode(err),
				Message: err.Error(),
			})
		case errors.Is(err, errs.ErrUserNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Code:    errs.ErrorCode(err),
				Message: "Referenced user does not exist",
			})
		default:
			// Infrastructure failure. 500 tells the provider to retry; the
			// idempotency check absorbs the redelivery.
			h.logger.Error("Webhook processing failed", map[string]any{
				"provider":   notification.Provider,
				"payment_id": notification.PaymentID,
				"error":      err.Error(),
			})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Code:    errs.ErrorCode(err),
				Message: "Internal server error",
			})
		}
	}
}
