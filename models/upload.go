package models

import (
	"time"
)

// Upload records a received screenshot and where it was stored on disk.
type Upload struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileName    string `gorm:"size:255;not null"`
	StorePath   string `gorm:"column:store_path;size:512"` // relative path under the upload base dir
	ContentType string `gorm:"size:128"`
	SizeBytes   int64
	// Mark upload as failed for processing (record kept so it can be reviewed)
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
