package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/gateway"
)

const (
	pagbankProvider = "pagbank"
	pagbankMethod   = "card"
)

// PagBankGateway creates card checkout orders through the PagBank orders API
// and decodes its charge webhooks.
type PagBankGateway struct {
	baseURL       string
	token         string
	webhookSecret string
	client        *http.Client
	logger        coreport.Logger
}

// NewPagBankGateway creates a PagBank adapter with a bounded HTTP client.
func NewPagBankGateway(baseURL, token, webhookSecret string, timeout time.Duration, logger coreport.Logger) *PagBankGateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if webhookSecret == "" {
		logger.Warn("PagBank webhook secret not configured, signature verification disabled", nil)
	}
	return &PagBankGateway{
		baseURL:       baseURL,
		token:         token,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// Provider returns the gateway identifier
func (g *PagBankGateway) Provider() string { return pagbankProvider }

// Method returns the payment method tag
func (g *PagBankGateway) Method() string { return pagbankMethod }

type pagbankOrderRequest struct {
	ReferenceID string          `json:"reference_id"`
	Customer    pagbankCustomer `json:"customer"`
	Items       []pagbankItem   `json:"items"`
}

type pagbankCustomer struct {
	Name string `json:"name"`
}

type pagbankItem struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	UnitAmount  int64  `json:"unit_amount"` // cents
	Description string `json:"description,omitempty"`
}

type pagbankOrderResponse struct {
	ID    string        `json:"id"`
	Links []pagbankLink `json:"links"`
}

type pagbankLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// CreateIntent registers a checkout order and returns its payment link.
func (g *PagBankGateway) CreateIntent(ctx context.Context, req gateway.CreateIntentRequest) (*gateway.Intent, error) {
	name := req.Username
	if name == "" {
		name = "customer"
	}
	body, err := json.Marshal(pagbankOrderRequest{
		ReferenceID: req.Reference,
		Customer:    pagbankCustomer{Name: name},
		Items: []pagbankItem{{
			Name:       "balance top-up",
			Quantity:   1,
			UnitAmount: req.AmountCents,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error("PagBank order request failed", map[string]any{
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
		g.logger.Error("PagBank order rejected", map[string]any{
			"reference": req.Reference,
			"status":    resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: status %d", errs.ErrGatewayUnavailable, resp.StatusCode)
	}

	var order pagbankOrderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %s", errs.ErrGatewayUnavailable, err.Error())
	}

	payLink := ""
	for _, link := range order.Links {
		if link.Rel == "PAY" || strings.EqualFold(link.Rel, "pay") {
			payLink = link.Href
			break
		}
	}
	if payLink == "" {
		return nil, fmt.Errorf("%w: order response missing payment link", errs.ErrGatewayUnavailable)
	}

	return &gateway.Intent{
		Provider: pagbankProvider,
		OrderID:  order.ID,
		PayCode:  payLink,
	}, nil
}

// SignatureHeader names the header carrying the webhook HMAC
func (g *PagBankGateway) SignatureHeader() string { return "X-Pagbank-Signature" }

// VerifySignature checks the webhook HMAC over the raw body
func (g *PagBankGateway) VerifySignature(rawBody []byte, signature string) error {
	return verifyHMAC(g.webhookSecret, rawBody, signature)
}

type pagbankWebhook struct {
	ReferenceID string          `json:"reference_id"`
	Charges     []pagbankCharge `json:"charges"`
}

type pagbankCharge struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Amount pagbankAmount `json:"amount"`
}

type pagbankAmount struct {
	Value int64 `json:"value"` // cents
}

// DecodeNotification parses a PagBank webhook. Only orders carrying a PAID
// charge become notifications; everything else is acknowledged with (nil, nil).
func (g *PagBankGateway) DecodeNotification(rawBody []byte) (*gateway.Notification, error) {
	var hook pagbankWebhook
	if err := json.Unmarshal(rawBody, &hook); err != nil {
		return nil, fmt.Errorf("malformed webhook body: %w", err)
	}

	for _, charge := range hook.Charges {
		if charge.Status != "PAID" {
			continue
		}
		if charge.ID == "" || hook.ReferenceID == "" {
			return nil, fmt.Errorf("webhook missing charge id or reference_id")
		}
		return &gateway.Notification{
			Provider:    pagbankProvider,
			PaymentID:   charge.ID,
			Reference:   hook.ReferenceID,
			Method:      pagbankMethod,
			AmountCents: charge.Amount.Value,
		}, nil
	}

	return nil, nil
}
