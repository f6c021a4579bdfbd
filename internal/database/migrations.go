package database

import (
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/models"
)

// AutoMigrate creates or updates the database schema for all models. Every
// model is attempted even when an earlier one fails, so one broken table
// does not mask the rest.
func AutoMigrate(db *gorm.DB) error {
	targets := []any{
		&models.User{},
		&models.Printer{},
		&models.OpeningRequest{},
		&models.Notification{},
		&models.AppSetting{},
	}

	var errs error
	for _, target := range targets {
		if err := db.AutoMigrate(target); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("migrate %T: %w", target, err))
		}
	}
	return errs
}
