package database

import (
	"fmt"

	"beatsbook/internal/bookings"
	"beatsbook/internal/comments"
	"beatsbook/internal/events"
	"beatsbook/internal/users"
	"beatsbook/pkg/logger"
)

// Migrate runs the schema migrations for all models.
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}

	err := DB.AutoMigrate(
		&users.User{},
		&events.Event{},
		&events.TicketTier{},
		&bookings.Booking{},
		&comments.Comment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.GetDefault().Info("database migrations completed")
	return nil
}
