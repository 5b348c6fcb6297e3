// Package admin implements privileged balance corrections and reporting.
// Authorization is a boolean capability on the acting user's stored record;
// there is no role hierarchy.
package admin

import (
	"context"
	"time"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/persistence"
	"ggshop-bot/internal/domain/usecase/ledger"
)

// Report is a read-only snapshot for admins.
type Report struct {
	Users             []*entity.User // ordered by balance descending
	TotalBalanceCents int64
	AdminCount        int
	TodayCount        int64
	TodayTransactions []*entity.Transaction
}

// Service gates admin operations behind the stored admin flag.
type Service struct {
	ledger       *ledger.Service
	userRepo     persistence.UserRepository
	txnRepo      persistence.TransactionRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates an admin service.
func NewService(
	ledgerSvc *ledger.Service,
	userRepo persistence.UserRepository,
	txnRepo persistence.TransactionRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		ledger:       ledgerSvc,
		userRepo:     userRepo,
		txnRepo:      txnRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// authorize resolves the actor and rejects non-admins. The error carries no
// detail beyond "denied".
func (s *Service) authorize(ctx context.Context, actorID int64) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errs.IsNotFoundError(err) {
			return errs.ErrNotAuthorized
		}
		return err
	}
	if !actor.IsAdmin {
		s.logger.Warn("Privileged operation denied", map[string]any{
			"actor_id": actorID,
		})
		return errs.ErrNotAuthorized
	}
	return nil
}

// AdjustBalance applies a signed correction to the target's balance. Any
// signed delta is allowed: over- and under-payment corrections go both ways.
func (s *Service) AdjustBalance(ctx context.Context, actorID, targetID int64, deltaCents int64, note string) (*entity.User, error) {
	if err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	if note == "" {
		note = "manual adjustment"
	}
	description := note + " (by admin)"

	user, err := s.ledger.Apply(ctx, targetID, deltaCents, entity.KindAdminAdjustment, description, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Admin balance adjustment applied", map[string]any{
		"actor_id":  actorID,
		"target_id": targetID,
		"delta":     entity.FormatSignedCents(deltaCents),
	})

	return user, nil
}

// BuildReport assembles the admin snapshot: users by balance descending,
// aggregate balance, admin count and today's activity. Read-only.
func (s *Service) BuildReport(ctx context.Context, actorID int64) (*Report, error) {
	if err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Users: users}
	for _, u := range users {
		report.TotalBalanceCents += u.Balance
		if u.IsAdmin {
			report.AdminCount++
		}
	}

	startOfDay := s.startOfToday()
	report.TodayCount, err = s.txnRepo.CountSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	report.TodayTransactions, err = s.txnRepo.ListSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (s *Service) startOfToday() time.Time {
	now := s.timeProvider.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
