package main

import (
	"log"
	"os"

	"deckscan/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// initDB connects to Postgres and migrates the schema. A missing DSN is not
// fatal: the app still processes screenshots, it just cannot persist deck
// history, and the history endpoints report unavailable.
func initDB(dsn string) {
	if dsn == "" {
		log.Println("no database configured; deck history disabled")
		return
	}
	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Migrate models individually so a failure on one doesn't block others
	if err := db.AutoMigrate(&models.Upload{}); err != nil {
		log.Printf("migration warning (uploads): %v", err)
	}
	if err := db.AutoMigrate(&models.Deck{}); err != nil {
		log.Printf("migration warning (decks): %v", err)
	}
	if err := db.AutoMigrate(&models.DeckCard{}); err != nil {
		log.Printf("migration warning (deck_cards): %v", err)
	}
}

// historyEnabled reports whether deck persistence is available.
func historyEnabled() bool {
	return db != nil
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase(base string) {
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}
