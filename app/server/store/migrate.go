package store

import (
	"remote-connection-manager/app/server/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.AuditLog{},
	)
}
