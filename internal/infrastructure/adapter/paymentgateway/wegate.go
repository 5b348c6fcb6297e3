// Package paymentgateway contains thin adapters for upstream payment
// providers. Each adapter translates between the domain's intent/notification
// types and one provider's HTTP API; none of them touch the ledger.
package paymentgateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/gateway"
)

const (
	wegateProvider = "wegate"
	wegateMethod   = "pix"
)

// WegateGateway creates PIX charges through the Wegate API and decodes its
// payment webhooks.
type WegateGateway struct {
	baseURL       string
	token         string
	webhookSecret string
	client        *http.Client
	logger        coreport.Logger
}

// NewWegateGateway creates a Wegate adapter with a bounded HTTP client.
func NewWegateGateway(baseURL, token, webhookSecret string, timeout time.Duration, logger coreport.Logger) *WegateGateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if webhookSecret == "" {
		logger.Warn("Wegate webhook secret not configured, signature verification disabled", nil)
	}
	return &WegateGateway{
		baseURL:       baseURL,
		token:         token,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// Provider returns the gateway identifier
func (g *WegateGateway) Provider() string { return wegateProvider }

// Method returns the payment method tag
func (g *WegateGateway) Method() string { return wegateMethod }

type wegateChargeRequest struct {
	Amount     int64  `json:"amount"` // cents
	ExternalID string `json:"external_id"`
	PayerName  string `json:"payer_name,omitempty"`
}

type wegateChargeResponse struct {
	ID          string `json:"id"`
	QRCodeText  string `json:"qrcode_text"`
	QRCodeImage string `json:"qrcode_image"` // base64 PNG, optional
}

// CreateIntent registers a PIX charge and returns its copy-paste code and,
// when the provider supplies one, the QR image.
func (g *WegateGateway) CreateIntent(ctx context.Context, req gateway.CreateIntentRequest) (*gateway.Intent, error) {
	body, err := json.Marshal(wegateChargeRequest{
		Amount:     req.AmountCents,
		ExternalID: req.Reference,
		PayerName:  req.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/v1/pix/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error("Wegate charge request failed", map[string]any{
			"reference": req.Reference,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %s", errs.ErrGatewayUnavailable, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("Wegate charge rejected", map[string]any{
			"reference": req.Reference,
			"status":    resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: status %d", errs.ErrGatewayUnavailable, resp.StatusCode)
	}

	var charge wegateChargeResponse
	if err := json.Unmarshal(respBody, &charge); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %s", errs.ErrGatewayUnavailable, err.Error())
	}
	if charge.QRCodeText == "" {
		return nil, fmt.Errorf("%w: charge response missing qrcode_text", errs.ErrGatewayUnavailable)
	}

	var qrImage []byte
	if charge.QRCodeImage != "" {
		qrImage, err = base64.StdEncoding.DecodeString(charge.QRCodeImage)
		if err != nil {
			// The copy-paste code alone is enough to pay; keep going.
			g.logger.Warn("Wegate QR image is not valid base64", map[string]any{
				"order_id": charge.ID,
			})
			qrImage = nil
		}
	}

	return &gateway.Intent{
		Provider: wegateProvider,
		OrderID:  charge.ID,
		PayCode:  charge.QRCodeText,
		QRImage:  qrImage,
	}, nil
}

// SignatureHeader names the header carrying the webhook HMAC
func (g *WegateGateway) SignatureHeader() string { return "X-Wegate-Signature" }

// VerifySignature checks the webhook HMAC over the raw body
func (g *WegateGateway) VerifySignature(rawBody []byte, signature string) error {
	return verifyHMAC(g.webhookSecret, rawBody, signature)
}

type wegateWebhook struct {
	Event      string `json:"event"`
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Amount     int64  `json:"amount"` // cents
}

// DecodeNotification parses a Wegate webhook. Only pix.paid events become
// notifications; everything else is acknowledged with (nil, nil).
func (g *WegateGateway) DecodeNotification(rawBody []byte) (*gateway.Notification, error) {
	var hook wegateWebhook
	if err := json.Unmarshal(rawBody, &hook); err != nil {
		return nil, fmt.Errorf("malformed webhook body: %w", err)
	}

	if hook.Event != "pix.paid" {
		return nil, nil
	}
	if hook.ID == "" || hook.ExternalID == "" {
		return nil, fmt.Errorf("webhook missing id or external_id")
	}

	return &gateway.Notification{
		Provider:    wegateProvider,
		PaymentID:   hook.ID,
		Reference:   hook.ExternalID,
		Method:      wegateMethod,
		AmountCents: hook.Amount,
	}, nil
}
