package mappers

import (
	"time"

	"accessgate/internal/domain/directory"
	"accessgate/internal/infrastructure/persistence/models"
)

// GroupMapper handles the conversion between group entities and models.
type GroupMapper struct{}

// NewGroupMapper creates a new group mapper
func NewGroupMapper() *GroupMapper {
	return &GroupMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *GroupMapper) ToEntity(model *models.GroupModel) *directory.Group {
	if model == nil {
		return nil
	}

	tags := make([]directory.Tag, 0, len(model.Tags))
	for _, tag := range model.Tags {
		tags = append(tags, directory.ReconstructTag(tag.ID, tag.Name))
	}

	var deletedAt *time.Time
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		deletedAt = &t
	}

	return directory.ReconstructGroup(
		model.ID,
		model.Name,
		directory.GroupKind(model.Kind),
		model.AppName,
		tags,
		deletedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

// ToModel converts a domain entity to a persistence model
func (m *GroupMapper) ToModel(entity *directory.Group) *models.GroupModel {
	if entity == nil {
		return nil
	}

	tags := make([]models.TagModel, 0, len(entity.Tags()))
	for _, tag := range entity.Tags() {
		tags = append(tags, models.TagModel{ID: tag.ID(), Name: tag.Name()})
	}

	return &models.GroupModel{
		ID:      entity.ID(),
		Name:    entity.Name(),
		Kind:    string(entity.Kind()),
		AppName: entity.AppName(),
		Tags:    tags,
	}
}
