// Package deposit covers both halves of funding a balance: creating a payment
// intent with an upstream gateway, and reconciling the gateway's webhook
// confirmation into an idempotent ledger credit.
package deposit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/gateway"
	"ggshop-bot/internal/domain/port/persistence"
	"ggshop-bot/internal/domain/usecase/ledger"
)

// Service creates deposit intents and credits confirmed payments.
type Service struct {
	gateways map[string]gateway.PaymentGateway // keyed by method tag
	ledger   *ledger.Service
	userRepo persistence.UserRepository
	logger   coreport.Logger
}

// NewService creates a deposit service over the configured gateways.
func NewService(
	gateways []gateway.PaymentGateway,
	ledgerSvc *ledger.Service,
	userRepo persistence.UserRepository,
	logger coreport.Logger,
) *Service {
	byMethod := make(map[string]gateway.PaymentGateway, len(gateways))
	for _, gw := range gateways {
		byMethod[gw.Method()] = gw
	}
	return &Service{
		gateways: byMethod,
		ledger:   ledgerSvc,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Methods lists the configured payment method tags.
func (s *Service) Methods() []string {
	methods := make([]string, 0, len(s.gateways))
	for m := range s.gateways {
		methods = append(methods, m)
	}
	return methods
}

// CreateIntent registers a payment intent upstream and returns the payment
// instructions. This never touches the balance: the reference id is the only
// link between the intent and the later confirmation.
func (s *Service) CreateIntent(ctx context.Context, userID int64, username string, amountCents int64, method string) (*gateway.Intent, error) {
	if amountCents <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	gw, ok := s.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownMethod, method)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	reference := NewReference(userID)
	intent, err := gw.CreateIntent(ctx, gateway.CreateIntentRequest{
		AmountCents: amountCents,
		Reference:   reference,
		Username:    username,
	})
	if err != nil {
		s.logger.Error("Failed to create payment intent", map[string]any{
			"user_id":  userID,
			"method":   method,
			"amount":   entity.FormatCents(amountCents),
			"error":    err.Error(),
			"provider": gw.Provider(),
		})
		return nil, err
	}

	s.logger.Info("Payment intent created", map[string]any{
		"user_id":   userID,
		"method":    method,
		"amount":    entity.FormatCents(amountCents),
		"provider":  intent.Provider,
		"order_id":  intent.OrderID,
		"reference": reference,
	})

	return intent, nil
}

// Confirm credits a decoded payment notification exactly once. The referenced
// user must already exist; a callback naming an unknown user fails closed and
// is never allowed to create an account. A repeated notification for the same
// provider payment id returns ErrDuplicateDeposit with zero mutation.
func (s *Service) Confirm(ctx context.Context, n *gateway.Notification) (*entity.User, error) {
	userID, err := ParseReference(n.Reference)
	if err != nil {
		return nil, err
	}
	if n.AmountCents <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		s.logger.Warn("Webhook references unknown user, rejecting", map[string]any{
			"reference":  n.Reference,
			"provider":   n.Provider,
			"payment_id": n.PaymentID,
		})
		return nil, err
	}

	description := fmt.Sprintf("deposit via %s (%s)", n.Method, n.Provider)
	return s.ledger.Apply(ctx, userID, n.AmountCents, entity.KindDeposit, description, &entity.PaymentRef{
		Provider:  n.Provider,
		PaymentID: n.PaymentID,
		Method:    n.Method,
	})
}

// NewReference builds the intent reference: "<userId>-<uuid>". The uuid keeps
// repeated intents from the same user distinct.
func NewReference(userID int64) string {
	return fmt.Sprintf("%d-%s", userID, uuid.NewString())
}

// ParseReference recovers the user id from a reference: the first
// '-'-delimited token. Anything else is malformed.
func ParseReference(reference string) (int64, error) {
	head, _, found := strings.Cut(reference, "-")
	if !found || head == "" {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidReference, reference)
	}
	userID, err := strconv.ParseInt(head, 10, 64)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidReference, reference)
	}
	return userID, nil
}
