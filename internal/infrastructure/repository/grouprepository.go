// Package repository provides gorm-backed implementations of the domain
// repository interfaces.
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

// GroupRepositoryImpl implements directory.GroupRepository using gorm.
type GroupRepositoryImpl struct {
	db     *gorm.DB
	mapper *mappers.GroupMapper
	logger logger.Interface
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *gorm.DB, logger logger.Interface) *GroupRepositoryImpl {
	return &GroupRepositoryImpl{
		db:     db,
		mapper: mappers.NewGroupMapper(),
		logger: logger,
	}
}

var _ directory.GroupRepository = (*GroupRepositoryImpl)(nil)

// GetActiveByName retrieves a non-deleted group by exact name with its tags.
// Soft-deleted groups are excluded by gorm's DeletedAt handling.
func (r *GroupRepositoryImpl) GetActiveByName(ctx context.Context, name string) (*directory.Group, error) {
	var model models.GroupModel
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("name = ?", name).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %q not found", name))
		}
		r.logger.Errorw("failed to query group by name", "name", name, "error", err)
		return nil, fmt.Errorf("failed to query group %q: %w", name, err)
	}

	return r.mapper.ToEntity(&model), nil
}

// GetByID retrieves a group by internal ID with its tags. Soft-deleted groups
// are excluded.
func (r *GroupRepositoryImpl) GetByID(ctx context.Context, id uint) (*directory.Group, error) {
	var model models.GroupModel
	err := r.db.WithContext(ctx).
		Preload("Tags").
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %d not found", id))
		}
		r.logger.Errorw("failed to query group by id", "id", id, "error", err)
		return nil, fmt.Errorf("failed to query group %d: %w", id, err)
	}

	return r.mapper.ToEntity(&model), nil
}
