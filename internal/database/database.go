package database

import (
	"log"

	"github.com/aldeiamar/booking-api/internal/config"
	"github.com/aldeiamar/booking-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.Order{},
		&models.GuestRegistration{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.FiscalCredential{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
