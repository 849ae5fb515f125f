package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"accessgate/internal/domain/access"
	"accessgate/internal/infrastructure/persistence/mappers"
	"accessgate/internal/infrastructure/persistence/models"
	apperrors "accessgate/internal/shared/errors"
	"accessgate/internal/shared/logger"
)

// AccessRequestRepositoryImpl implements access.Repository using gorm.
type AccessRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mappers.AccessRequestMapper
	logger logger.Interface
}

// NewAccessRequestRepository creates a new access request repository
func NewAccessRequestRepository(db *gorm.DB, logger logger.Interface) *AccessRequestRepositoryImpl {
	return &AccessRequestRepositoryImpl{
		db:     db,
		mapper: mappers.NewAccessRequestMapper(),
		logger: logger,
	}
}

var _ access.Repository = (*AccessRequestRepositoryImpl)(nil)

// GetByID retrieves a request by internal ID
func (r *AccessRequestRepositoryImpl) GetByID(ctx context.Context, id uint) (*access.Request, error) {
	var model models.AccessRequestModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("access request %d not found", id))
		}
		r.logger.Errorw("failed to query access request", "request_id", id, "error", err)
		return nil, fmt.Errorf("failed to query access request %d: %w", id, err)
	}
	return r.mapper.ToEntity(&model), nil
}

// Create inserts a new pending request
func (r *AccessRequestRepositoryImpl) Create(ctx context.Context, request *access.Request) error {
	model := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create access request", "error", err)
		return fmt.Errorf("failed to create access request: %w", err)
	}
	request.SetID(model.ID)
	return nil
}

// Update persists a request's resolution
func (r *AccessRequestRepositoryImpl) Update(ctx context.Context, request *access.Request) error {
	if request.ID() == 0 {
		return apperrors.NewValidationError("cannot update access request without ID")
	}

	err := r.db.WithContext(ctx).Model(&models.AccessRequestModel{}).
		Where("id = ?", request.ID()).
		Updates(map[string]interface{}{
			"status":            string(request.Status()),
			"resolution_reason": request.ResolutionReason(),
			"resolved_at":       request.ResolvedAt(),
		}).Error
	if err != nil {
		r.logger.Errorw("failed to update access request", "request_id", request.ID(), "error", err)
		return fmt.Errorf("failed to update access request %d: %w", request.ID(), err)
	}
	return nil
}
