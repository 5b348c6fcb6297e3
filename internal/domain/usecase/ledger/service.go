// Package ledger implements the balance service: the single authorized path
// for mutating a user's balance. Every mutation is one atomic unit of work
// that adjusts the balance and appends exactly one ledger entry.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/persistence"
)

// Service wraps "adjust balance + append transaction" as one logical unit.
// It is a mechanical primitive: it does not check sufficiency, clamp amounts,
// or reject negative results. That policy belongs to callers.
type Service struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a balance service on top of a unit of work.
func NewService(
	uow persistence.UnitOfWork,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Apply atomically adds amountCents to the user's balance and appends one
// transaction row. Both effects commit together or neither does. The caller
// must ensure the user exists beforehand; Apply never creates users.
//
// When ref is set, the (provider, paymentID) pair is checked inside the same
// locked transaction: a payment id that has already been credited returns
// ErrDuplicateDeposit with zero mutation, so retried provider callbacks are
// safe. The returned user reflects authoritative state as of immediately
// after the append, re-read from storage rather than computed in memory.
func (s *Service) Apply(
	ctx context.Context,
	userID int64,
	amountCents int64,
	kind entity.Kind,
	description string,
	ref *entity.PaymentRef,
) (*entity.User, error) {
	txn, err := entity.NewTransaction(userID, kind, amountCents, description, ref, s.timeProvider)
	if err != nil {
		return nil, err
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	user, err := s.applyInTx(txCtx, txn)
	if err != nil {
		if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
			s.logger.Error("Rollback failed after apply error", map[string]any{
				"user_id":        userID,
				"apply_error":    err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		s.logger.Error("Failed to commit ledger unit of work", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	s.logger.Info("Ledger entry applied", map[string]any{
		"user_id":     userID,
		"kind":        string(kind),
		"amount":      entity.FormatSignedCents(amountCents),
		"new_balance": user.FormattedBalance(),
	})

	return user, nil
}

// applyInTx performs the two writes inside the transactional context.
func (s *Service) applyInTx(txCtx context.Context, txn *entity.Transaction) (*entity.User, error) {
	users := s.uow.GetUserRepository(txCtx)
	txns := s.uow.GetTransactionRepository(txCtx)

	// Idempotency pre-check under the transaction. The unique index on
	// (provider, payment_id) still backs this if two confirmations race.
	if txn.PaymentID != "" {
		_, err := txns.GetByPaymentID(txCtx, txn.Provider, txn.PaymentID)
		switch {
		case err == nil:
			s.logger.Warn("Duplicate deposit notification ignored", map[string]any{
				"user_id":    txn.UserID,
				"provider":   txn.Provider,
				"payment_id": txn.PaymentID,
			})
			return nil, errs.ErrDuplicateDeposit
		case !errors.Is(err, errs.ErrTransactionNotFound):
			return nil, err
		}
	}

	user, err := users.AdjustBalance(txCtx, txn.UserID, txn.AmountCents)
	if err != nil {
		return nil, err
	}

	if err := txns.Create(txCtx, txn); err != nil {
		return nil, err
	}

	return user, nil
}
