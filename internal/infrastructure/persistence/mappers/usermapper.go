// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"gorm.io/datatypes"

	"accessgate/internal/domain/directory"
	"accessgate/internal/infrastructure/persistence/models"
)

// UserMapper handles the conversion between user entities and models.
type UserMapper struct{}

// NewUserMapper creates a new user mapper
func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *UserMapper) ToEntity(model *models.UserModel) *directory.User {
	if model == nil {
		return nil
	}
	return directory.ReconstructUser(model.ID, model.Email, model.Profile)
}

// ToModel converts a domain entity to a persistence model
func (m *UserMapper) ToModel(entity *directory.User) *models.UserModel {
	if entity == nil {
		return nil
	}
	return &models.UserModel{
		ID:      entity.ID(),
		Email:   entity.Email(),
		Profile: datatypes.JSONMap(entity.Profile()),
	}
}

// ToEntities converts multiple persistence models to domain entities
func (m *UserMapper) ToEntities(userModels []*models.UserModel) []*directory.User {
	entities := make([]*directory.User, 0, len(userModels))
	for _, model := range userModels {
		entities = append(entities, m.ToEntity(model))
	}
	return entities
}
