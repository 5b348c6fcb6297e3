package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements persistence.TransactionRepository using GORM.
// The ledger is append-only: this repository has no update or delete methods.
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func txnEntityToModel(transaction *entity.Transaction) model.Transaction {
	return model.Transaction{
		UserID:      transaction.UserID,
		Kind:        string(transaction.Kind),
		AmountCents: transaction.AmountCents,
		Description: transaction.Description,
		Provider:    transaction.Provider,
		PaymentID:   transaction.PaymentID,
		Method:      transaction.Method,
		CreatedAt:   transaction.CreatedAt,
	}
}

func txnModelToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:          m.ID,
		UserID:      m.UserID,
		Kind:        entity.Kind(m.Kind),
		AmountCents: m.AmountCents,
		Description: m.Description,
		Provider:    m.Provider,
		PaymentID:   m.PaymentID,
		Method:      m.Method,
		CreatedAt:   m.CreatedAt,
	}
}

// Create appends one ledger entry. A violation of the (provider, payment_id)
// unique index surfaces as ErrDuplicateDeposit: the entry was already
// recorded by an earlier delivery of the same notification.
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := txnEntityToModel(transaction)

	result := r.db.WithContext(ctx).Create(&transactionModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate deposit insert blocked by index", map[string]any{
				"user_id":    transaction.UserID,
				"provider":   transaction.Provider,
				"payment_id": transaction.PaymentID,
			})
			return errs.ErrDuplicateDeposit
		}

		r.logger.Error("Failed to create transaction", map[string]any{
			"user_id": transaction.UserID,
			"kind":    string(transaction.Kind),
			"error":   result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	transaction.ID = transactionModel.ID
	return nil
}

// GetByPaymentID retrieves the deposit entry for a provider payment id
func (r *TransactionRepository) GetByPaymentID(ctx context.Context, provider, paymentID string) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("provider = ? AND payment_id = ?", provider, paymentID).
		First(&transactionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction by payment id", map[string]any{
			"provider":   provider,
			"payment_id": paymentID,
			"error":      result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return txnModelToEntity(&transactionModel), nil
}

// ListByUser returns a user's most recent entries, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var transactionModels []model.Transaction
	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	return modelsToEntities(transactionModels), nil
}

// ListSince returns all entries created at or after the given instant, oldest first
func (r *TransactionRepository) ListSince(ctx context.Context, since time.Time) ([]*entity.Transaction, error) {
	var transactionModels []model.Transaction
	result := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC, id ASC").
		Find(&transactionModels)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return modelsToEntities(transactionModels), nil
}

// CountSince returns the number of entries created at or after the given instant
func (r *TransactionRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("created_at >= ?", since).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return count, nil
}

func modelsToEntities(transactionModels []model.Transaction) []*entity.Transaction {
	transactions := make([]*entity.Transaction, 0, len(transactionModels))
	for i := range transactionModels {
		transactions = append(transactions, txnModelToEntity(&transactionModels[i]))
	}
	return transactions
}
