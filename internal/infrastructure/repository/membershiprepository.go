package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"accessgate/internal/domain/directory"
	"accessgate/internal/infrastructure/persistence/mappers"
	"accessgate/internal/infrastructure/persistence/models"
	"accessgate/internal/shared/biztime"
	"accessgate/internal/shared/constants"
	sharedDb "accessgate/internal/shared/db"
	apperrors "accessgate/internal/shared/errors"
	"accessgate/internal/shared/logger"
)

// MembershipRepositoryImpl implements directory.MembershipRepository using
// gorm. Writes honor a transaction carried in the context so the reconcile
// diff/apply step can run atomically per record.
type MembershipRepositoryImpl struct {
	db     *gorm.DB
	mapper *mappers.MembershipMapper
	logger logger.Interface
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB, logger logger.Interface) *MembershipRepositoryImpl {
	return &MembershipRepositoryImpl{
		db:     db,
		mapper: mappers.NewMembershipMapper(),
		logger: logger,
	}
}

var _ directory.MembershipRepository = (*MembershipRepositoryImpl)(nil)

func activeScope(now interface{}) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("ended_at IS NULL OR ended_at > ?", now)
	}
}

// ListActiveMemberships returns the active non-owner records of a group.
func (r *MembershipRepositoryImpl) ListActiveMemberships(ctx context.Context, groupID uint) ([]*directory.MembershipRecord, error) {
	return r.listActive(ctx, groupID, false)
}

// ListActiveOwnerships returns the active owner records of a group.
func (r *MembershipRepositoryImpl) ListActiveOwnerships(ctx context.Context, groupID uint) ([]*directory.MembershipRecord, error) {
	return r.listActive(ctx, groupID, true)
}

func (r *MembershipRepositoryImpl) listActive(ctx context.Context, groupID uint, isOwner bool) ([]*directory.MembershipRecord, error) {
	var membershipModels []*models.MembershipModel
	err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(activeScope(biztime.NowUTC())).
		Where("group_id = ? AND is_owner = ?", groupID, isOwner).
		Order("id").
		Find(&membershipModels).Error
	if err != nil {
		r.logger.Errorw("failed to list memberships", "group_id", groupID, "is_owner", isOwner, "error", err)
		return nil, fmt.Errorf("failed to list memberships of group %d: %w", groupID, err)
	}
	return r.mapper.ToEntities(membershipModels), nil
}

// ListOwnedGroupNames returns the names of non-deleted groups the user
// currently owns. GROUPS is a reserved word in MySQL 8, so the join keeps its
// identifiers quoted.
func (r *MembershipRepositoryImpl) ListOwnedGroupNames(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.MembershipModel{}).
		Joins(fmt.Sprintf("JOIN `%s` ON `%s`.id = `%s`.group_id",
			constants.TableGroups, constants.TableGroups, constants.TableMemberships)).
		Scopes(activeScope(biztime.NowUTC())).
		Where(fmt.Sprintf("`%s`.deleted_at IS NULL", constants.TableGroups)).
		Where("user_id = ? AND is_owner = ?", userID, true).
		Pluck(fmt.Sprintf("`%s`.name", constants.TableGroups), &names).Error
	if err != nil {
		r.logger.Errorw("failed to list owned groups", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list owned groups of user %d: %w", userID, err)
	}
	return names, nil
}

// FindOwnershipRecord returns the owner record for (group, user) regardless
// of its ended state, preferring an active row when duplicates exist.
func (r *MembershipRepositoryImpl) FindOwnershipRecord(ctx context.Context, groupID, userID uint) (*directory.MembershipRecord, error) {
	tx := sharedDb.GetTxFromContext(ctx, r.db)

	var model models.MembershipModel
	err := tx.
		Where("group_id = ? AND user_id = ? AND is_owner = ?", groupID, userID, true).
		Order("ended_at IS NULL DESC, id").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(
				fmt.Sprintf("no ownership record for group %d user %d", groupID, userID))
		}
		r.logger.Errorw("failed to find ownership record", "group_id", groupID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to find ownership record: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}

// Create inserts a new membership record
func (r *MembershipRepositoryImpl) Create(ctx context.Context, record *directory.MembershipRecord) error {
	tx := sharedDb.GetTxFromContext(ctx, r.db)

	model := r.mapper.ToModel(record)
	if err := tx.Create(model).Error; err != nil {
		r.logger.Errorw("failed to create membership record",
			"group_id", record.GroupID(), "user_id", record.UserID(), "error", err)
		return fmt.Errorf("failed to create membership record: %w", err)
	}
	record.SetID(model.ID)
	return nil
}

// Update persists ended_at transitions of an existing record
func (r *MembershipRepositoryImpl) Update(ctx context.Context, record *directory.MembershipRecord) error {
	if record.ID() == 0 {
		return apperrors.NewValidationError("cannot update membership record without ID")
	}
	tx := sharedDb.GetTxFromContext(ctx, r.db)

	err := tx.Model(&models.MembershipModel{}).
		Where("id = ?", record.ID()).
		Update("ended_at", record.EndedAt()).Error
	if err != nil {
		r.logger.Errorw("failed to update membership record", "id", record.ID(), "error", err)
		return fmt.Errorf("failed to update membership record %d: %w", record.ID(), err)
	}
	return nil
}
