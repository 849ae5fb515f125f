package models

import (
	"time"

	"accessgate/internal/shared/constants"
)

// AccessRequestModel represents the database persistence model for membership
// requests.
type AccessRequestModel struct {
	ID               uint   `gorm:"primarykey"`
	RequesterID      uint   `gorm:"not null;index"`
	GroupID          uint   `gorm:"not null;index"`
	RequestOwnership bool   `gorm:"not null;default:false"`
	RequestReason    string `gorm:"type:text"`
	RequestEndingAt  *time.Time
	Status           string `gorm:"not null;default:pending;size:20;index"`
	ResolutionReason string `gorm:"type:text"`
	ResolvedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM
func (AccessRequestModel) TableName() string {
	return constants.TableAccessRequests
}
