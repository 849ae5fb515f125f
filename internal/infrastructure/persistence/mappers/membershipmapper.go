package mappers

import (
	"accessgate/internal/domain/directory"
	"accessgate/internal/infrastructure/persistence/models"
)

// MembershipMapper handles the conversion between membership records and
// models.
type MembershipMapper struct {
	userMapper *UserMapper
}

// NewMembershipMapper creates a new membership mapper
func NewMembershipMapper() *MembershipMapper {
	return &MembershipMapper{userMapper: NewUserMapper()}
}

// ToEntity converts a persistence model to a domain entity. The joined user
// is mapped when loaded.
func (m *MembershipMapper) ToEntity(model *models.MembershipModel) *directory.MembershipRecord {
	if model == nil {
		return nil
	}

	var user *directory.User
	if model.User.ID != 0 {
		user = m.userMapper.ToEntity(&model.User)
	}

	return directory.ReconstructMembershipRecord(
		model.ID,
		model.GroupID,
		model.UserID,
		model.IsOwner,
		model.StartedAt,
		model.EndedAt,
		user,
	)
}

// ToModel converts a domain entity to a persistence model
func (m *MembershipMapper) ToModel(entity *directory.MembershipRecord) *models.MembershipModel {
	if entity == nil {
		return nil
	}
	return &models.MembershipModel{
		ID:        entity.ID(),
		GroupID:   entity.GroupID(),
		UserID:    entity.UserID(),
		IsOwner:   entity.IsOwner(),
		StartedAt: entity.StartedAt(),
		EndedAt:   entity.EndedAt(),
	}
}

// ToEntities converts multiple persistence models to domain entities
func (m *MembershipMapper) ToEntities(membershipModels []*models.MembershipModel) []*directory.MembershipRecord {
	entities := make([]*directory.MembershipRecord, 0, len(membershipModels))
	for _, model := range membershipModels {
		entities = append(entities, m.ToEntity(model))
	}
	return entities
}
