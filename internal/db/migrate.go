package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
)

// AllModels returns the GORM models backing the rollup cache.
func AllModels() []interface{} {
	return []interface{}{
		&models.ActivityRollup{},
		&models.StatsRun{},
	}
}

// AutoMigrate creates or updates the rollup tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
