package database

import (
	"fmt"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or extends the journal schema. Existing rows are kept;
// the journal is a long-lived local database, never rebuilt on start.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Account{},
		&models.Setup{},
		&models.Note{},
		&models.Chart{},
		&models.Analysis{},
		&models.Trade{},
		&models.TradeNote{},
		&models.TradeChart{},
		&models.AnalysisNote{},
		&models.AnalysisChart{},
		&models.SetupChart{},
		&models.NoteChart{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
