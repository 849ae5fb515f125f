package mappers

import (
	"accessgate/internal/domain/access"
	"accessgate/internal/infrastructure/persistence/models"
)

// AccessRequestMapper handles the conversion between access requests and
// models.
type AccessRequestMapper struct{}

// NewAccessRequestMapper creates a new access request mapper
func NewAccessRequestMapper() *AccessRequestMapper {
	return &AccessRequestMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *AccessRequestMapper) ToEntity(model *models.AccessRequestModel) *access.Request {
	if model == nil {
		return nil
	}
	return access.ReconstructRequest(
		model.ID,
		model.RequesterID,
		model.GroupID,
		model.RequestOwnership,
		model.RequestReason,
		model.RequestEndingAt,
		access.Status(model.Status),
		model.ResolutionReason,
		model.ResolvedAt,
		model.CreatedAt,
	)
}

// ToModel converts a domain entity to a persistence model
func (m *AccessRequestMapper) ToModel(entity *access.Request) *models.AccessRequestModel {
	if entity == nil {
		return nil
	}
	return &models.AccessRequestModel{
		ID:               entity.ID(),
		RequesterID:      entity.RequesterID(),
		GroupID:          entity.GroupID(),
		RequestOwnership: entity.RequestOwnership(),
		RequestReason:    entity.RequestReason(),
		RequestEndingAt:  entity.RequestEndingAt(),
		Status:           string(entity.Status()),
		ResolutionReason: entity.ResolutionReason(),
		ResolvedAt:       entity.ResolvedAt(),
		CreatedAt:        entity.CreatedAt(),
	}
}
