package db

import (
	"github.com/JaggerH/CopyWriter/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(database *gorm.DB) error {
	if err := database.AutoMigrate(&domain.Task{}); err != nil {
		return err
	}

	// Listing is always newest-first; keep the index aligned with that scan.
	return database.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_status
		ON tasks (status)
	`).Error
}
