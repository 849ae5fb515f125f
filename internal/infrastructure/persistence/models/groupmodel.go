package models

import (
	"time"

	"gorm.io/gorm"

	"accessgate/internal/shared/constants"
)

// GroupModel represents the database persistence model for access-control
// groups. Kind distinguishes plain, app-backed, and role-backed groups.
type GroupModel struct {
	ID        uint           `gorm:"primarykey"`
	Name      string         `gorm:"uniqueIndex;not null;size:255"`
	Kind      string         `gorm:"not null;default:okta_group;size:20"`
	AppName   string         `gorm:"size:255"`
	Tags      []TagModel     `gorm:"many2many:group_tags;"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (GroupModel) TableName() string {
	return constants.TableGroups
}

// TagModel represents the database persistence model for group tags
type TagModel struct {
	ID   uint   `gorm:"primarykey"`
	Name string `gorm:"uniqueIndex;not null;size:100"`
}

// TableName specifies the table name for GORM
func (TagModel) TableName() string {
	return constants.TableTags
}
