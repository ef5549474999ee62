package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for the audit tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&CallLog{},
	)
}
