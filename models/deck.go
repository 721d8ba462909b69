package models

import "time"

// Deck is one processed screenshot's extracted deck list.
type Deck struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// Public identifier used in API routes, stable across restarts.
	PublicID     string `gorm:"size:36;uniqueIndex;not null"`
	Name         string `gorm:"size:255"`
	Format       string `gorm:"size:16;index"` // arena, mtgo, paper
	Confidence   float64
	Guaranteed   bool `gorm:"index"`
	ProcessingMS int64
	UploadID     *uint      `gorm:"index"` // nullable, upload row may be pruned
	Cards        []DeckCard `gorm:"foreignKey:DeckID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// DeckCard is a single entry in a deck list.
type DeckCard struct {
	ID       uint   `gorm:"primaryKey"`
	DeckID   uint   `gorm:"index;not null"`
	Name     string `gorm:"size:255;not null"`
	Quantity int    `gorm:"not null"`
	Section  string `gorm:"size:16;not null"` // mainboard or sideboard
}
