package migration

import (
	"accessgate/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.GroupModel{},
		&models.TagModel{},
		&models.MembershipModel{},
		&models.AccessRequestModel{},
	}
}
