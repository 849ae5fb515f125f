package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"accessgate/internal/domain/directory"
	"accessgate/internal/infrastructure/persistence/mappers"
	"accessgate/internal/infrastructure/persistence/models"
	apperrors "accessgate/internal/shared/errors"
	"accessgate/internal/shared/logger"
)

// UserRepositoryImpl implements directory.UserRepository using gorm.
type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mappers.UserMapper
	logger logger.Interface
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger logger.Interface) *UserRepositoryImpl {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: logger,
	}
}

var _ directory.UserRepository = (*UserRepositoryImpl)(nil)

// GetByID retrieves a user by internal ID
func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uint) (*directory.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %d not found", id))
		}
		r.logger.Errorw("failed to query user by id", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to query user %d: %w", id, err)
	}
	return r.mapper.ToEntity(&model), nil
}

// GetByEmail retrieves a user by email
func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*directory.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with email %q not found", email))
		}
		r.logger.Errorw("failed to query user by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}
