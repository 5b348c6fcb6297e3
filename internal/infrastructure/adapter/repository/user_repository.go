package repository

import (
	"context"
	"errors"
	"fmt"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository implements persistence.UserRepository using GORM
type UserRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *UserRepository {
	return &UserRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func userModelToEntity(userModel *model.User) *entity.User {
	return &entity.User{
		ID:        userModel.ID,
		Username:  userModel.Username,
		Balance:   userModel.Balance,
		IsAdmin:   userModel.IsAdmin,
		CreatedAt: userModel.CreatedAt,
		UpdatedAt: userModel.UpdatedAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *UserRepository) handleDatabaseError(operation string, err error, userID int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("User not found", map[string]any{
			"user_id": userID,
		})
		return errs.ErrUserNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"user_id": userID,
		"error":   err.Error(),
	})

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return errs.ErrDuplicateUser
	}

	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var userModel model.User
	result := r.db.WithContext(ctx).First(&userModel, id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting user", result.Error, id)
	}

	return userModelToEntity(&userModel), nil
}

// CreateIfAbsent atomically finds or creates a user. The insert relies on the
// primary-key constraint: when a concurrent call wins the race, the duplicate
// error is resolved to the existing row. The username is refreshed when the
// platform reports a different one.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, id int64, username string) (*entity.User, bool, error) {
	now := r.timeProvider.Now()
	userModel := model.User{
		ID:        id,
		Username:  username,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := r.db.WithContext(ctx).Create(&userModel)
	if result.Error == nil {
		r.logger.Info("User created", map[string]any{
			"user_id":  id,
			"username": username,
		})
		return userModelToEntity(&userModel), true, nil
	}

	if !r.errorClassifier.IsDuplicateKeyError(result.Error) {
		return nil, false, r.handleDatabaseError("creating user", result.Error, id)
	}

	// Lost the race or the user already existed; load the canonical row.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if username != "" && existing.Username != username {
		update := r.db.WithContext(ctx).Model(&model.User{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"username":   username,
				"updated_at": now,
			})
		if update.Error != nil {
			return nil, false, r.handleDatabaseError("updating username", update.Error, id)
		}
		existing.Username = username
	}

	return existing, false, nil
}

// AdjustBalance adds delta to the user's balance under a FOR UPDATE row lock
// and returns the updated user. Mechanical: no sign check, no clamping. Run
// inside a unit of work so the ledger append shares the same transaction.
func (r *UserRepository) AdjustBalance(ctx context.Context, id int64, deltaCents int64) (*entity.User, error) {
	var userModel model.User
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&userModel, id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("locking user", result.Error, id)
	}

	userModel.Balance += deltaCents
	userModel.UpdatedAt = r.timeProvider.Now()

	result = r.db.WithContext(ctx).Model(&userModel).
		Updates(map[string]interface{}{
			"balance":    userModel.Balance,
			"updated_at": userModel.UpdatedAt,
		})
	if result.Error != nil {
		return nil, r.handleDatabaseError("updating balance", result.Error, id)
	}

	r.logger.Debug("Balance adjusted", map[string]any{
		"user_id":     id,
		"delta":       entity.FormatSignedCents(deltaCents),
		"new_balance": entity.FormatCents(userModel.Balance),
	})

	return userModelToEntity(&userModel), nil
}

// SetAdmin flips the admin flag. Startup-only path, no chat command reaches it.
func (r *UserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_admin":   isAdmin,
			"updated_at": r.timeProvider.Now(),
		})
	if result.Error != nil {
		return r.handleDatabaseError("setting admin flag", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}

	r.logger.Info("Admin flag updated", map[string]any{
		"user_id":  id,
		"is_admin": isAdmin,
	})
	return nil
}

// List returns all users ordered by balance descending
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	var userModels []model.User
	result := r.db.WithContext(ctx).Order("balance DESC").Find(&userModels)
	if result.Error != nil {
		return nil, r.handleDatabaseError("listing users", result.Error, 0)
	}

	users := make([]*entity.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, userModelToEntity(&userModels[i]))
	}
	return users, nil
}
