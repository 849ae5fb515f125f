package models

import (
	"time"

	"gorm.io/datatypes"

	"accessgate/internal/shared/constants"
)

// UserModel represents the database persistence model for users
type UserModel struct {
	ID        uint              `gorm:"primarykey"`
	Email     string            `gorm:"uniqueIndex;not null;size:255"`
	Profile   datatypes.JSONMap `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return constants.TableUsers
}
