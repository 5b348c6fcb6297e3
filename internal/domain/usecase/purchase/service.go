// Package purchase implements the debit-then-fulfill flow: charge the user
// for N items, generate them, and compensate the debit if generation fails.
package purchase

import (
	"context"
	"fmt"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/persistence"
	"ggshop-bot/internal/domain/usecase/ledger"
)

// Result carries the generated items and the balance after the purchase.
type Result struct {
	Items        []string
	BalanceCents int64
}

// Service charges users and fulfills orders.
type Service struct {
	ledger   *ledger.Service
	userRepo persistence.UserRepository
	catalog  Catalog
	logger   coreport.Logger

	maxQuantity int
	// enforceSufficiency guards the balance check before the debit. The
	// original deployment had this check short-circuited; it is an explicit
	// configuration flag now, default on. Turning it off allows unlimited
	// negative-balance purchases.
	enforceSufficiency bool
}

// NewService creates a purchase service.
func NewService(
	ledgerSvc *ledger.Service,
	userRepo persistence.UserRepository,
	catalog Catalog,
	maxQuantity int,
	enforceSufficiency bool,
	logger coreport.Logger,
) *Service {
	return &Service{
		ledger:             ledgerSvc,
		userRepo:           userRepo,
		catalog:            catalog,
		maxQuantity:        maxQuantity,
		enforceSufficiency: enforceSufficiency,
		logger:             logger,
	}
}

// Catalog exposes the catalog for presentation (price listings).
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// Buy charges userID for quantity items of itemType and returns the generated
// items plus the resulting balance. The debit lands first; if generation then
// fails partway, the debit is reversed by an explicit refund entry of the same
// amount. Debit and refund remain two distinct, auditable ledger rows.
func (s *Service) Buy(ctx context.Context, userID int64, itemType string, quantity int) (*Result, error) {
	item, ok := s.catalog[itemType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownItemType, itemType)
	}
	if quantity <= 0 {
		return nil, errs.ErrInvalidQuantity
	}
	if quantity > s.maxQuantity {
		return nil, fmt.Errorf("%w: max %d", errs.ErrQuantityTooHigh, s.maxQuantity)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalCents := item.UnitPriceCents * int64(quantity)
	if s.enforceSufficiency && !user.CanAfford(totalCents) {
		s.logger.Warn("Purchase rejected: insufficient balance", map[string]any{
			"user_id": userID,
			"item":    itemType,
			"total":   entity.FormatCents(totalCents),
			"balance": user.FormattedBalance(),
		})
		return nil, errs.ErrInsufficientBalance
	}

	description := fmt.Sprintf("purchase %dx %s", quantity, itemType)
	updated, err := s.ledger.Apply(ctx, userID, -totalCents, entity.KindPurchase, description, nil)
	if err != nil {
		return nil, err
	}

	items, genErr := s.generate(item, quantity)
	if genErr != nil {
		return nil, s.compensate(ctx, userID, totalCents, description, genErr)
	}

	return &Result{
		Items:        items,
		BalanceCents: updated.Balance,
	}, nil
}

func (s *Service) generate(item Item, quantity int) ([]string, error) {
	items := make([]string, 0, quantity)
	for i := 0; i < quantity; i++ {
		generated, err := item.Generate()
		if err != nil {
			return nil, fmt.Errorf("generating item %d of %d: %w", i+1, quantity, err)
		}
		items = append(items, generated)
	}
	return items, nil
}

// compensate reverses an applied debit after a fulfillment failure with a
// refund entry of the same amount. A failed compensation is escalated: the
// ledger is now short a refund and someone has to look at it.
func (s *Service) compensate(ctx context.Context, userID int64, totalCents int64, description string, cause error) error {
	s.logger.Warn("Fulfillment failed after debit, refunding", map[string]any{
		"user_id": userID,
		"amount":  entity.FormatCents(totalCents),
		"error":   cause.Error(),
	})

	refundDesc := "refund: fulfillment failed for " + description
	if _, err := s.ledger.Apply(ctx, userID, totalCents, entity.KindRefund, refundDesc, nil); err != nil {
		s.logger.Error("Compensating refund failed", map[string]any{
			"user_id":     userID,
			"amount":      entity.FormatCents(totalCents),
			"fulfillment": cause.Error(),
			"refund":      err.Error(),
		})
		return fmt.Errorf("%w: user %d amount %s: %s", errs.ErrCompensationFailed, userID, entity.FormatCents(totalCents), err.Error())
	}

	return fmt.Errorf("fulfillment failed, amount refunded: %w", cause)
}
