package database

import (
	"gorm.io/gorm"

	"github.com/rawgroundbeef/openfacilitator/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Facilitator{},
		&models.ChainIdentity{},
		&models.PaidResource{},
		&models.Payment{},
	)
}
