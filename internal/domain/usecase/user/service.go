// Package user handles account registration and lookups. Users are created
// lazily on first interaction and never deleted by normal operation.
package user

import (
	"context"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/persistence"
)

// Service handles user-related business logic.
type Service struct {
	userRepo persistence.UserRepository
	txnRepo  persistence.TransactionRepository
	logger   coreport.Logger
}

// NewService creates a new user service.
func NewService(
	userRepo persistence.UserRepository,
	txnRepo persistence.TransactionRepository,
	logger coreport.Logger,
) *Service {
	return &Service{
		userRepo: userRepo,
		txnRepo:  txnRepo,
		logger:   logger,
	}
}

// Ensure finds or creates the account for a chat user. Concurrent calls with
// the same id resolve to the same single row; the storage uniqueness
// constraint, not application locking, guarantees that.
func (s *Service) Ensure(ctx context.Context, id int64, username string) (*entity.User, error) {
	if id == 0 {
		return nil, errs.ErrInvalidUserID
	}

	user, created, err := s.userRepo.CreateIfAbsent(ctx, id, username)
	if err != nil {
		s.logger.Error("Failed to ensure user", map[string]any{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}

	if created {
		s.logger.Info("User registered", map[string]any{
			"user_id":  id,
			"username": username,
		})
	}

	return user, nil
}

// Get returns a registered user or ErrUserNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	if id == 0 {
		return nil, errs.ErrInvalidUserID
	}
	return s.userRepo.GetByID(ctx, id)
}

// History returns the user's most recent ledger entries, newest first.
func (s *Service) History(ctx context.Context, id int64, limit int) ([]*entity.Transaction, error) {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.txnRepo.ListByUser(ctx, id, limit)
}
