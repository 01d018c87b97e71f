package db

import (
	"fmt"

	"github.com/codegenhq/codegen/internal/models"
	"gorm.io/gorm"
)

// Migrate creates the schema idempotently. AutoMigrate only adds what is
// missing, so running it on every startup is safe.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}
