package models

import (
	"time"

	"accessgate/internal/shared/constants"
)

// MembershipModel represents the database persistence model for membership
// and ownership records. EndedAt nil or in the future means the record is
// active.
type MembershipModel struct {
	ID        uint `gorm:"primarykey"`
	GroupID   uint `gorm:"not null;index:idx_group_user_owner"`
	UserID    uint `gorm:"not null;index:idx_group_user_owner"`
	IsOwner   bool `gorm:"not null;default:false;index:idx_group_user_owner"`
	StartedAt time.Time
	EndedAt   *time.Time `gorm:"index"`
	User      UserModel  `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (MembershipModel) TableName() string {
	return constants.TableMemberships
}
