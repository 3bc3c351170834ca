package db

import (
	"time"

	"gorm.io/datatypes"
)

// Report is one persisted fact row: the full report document plus its
// dimension keys. Reports are append-only; nothing in this service updates
// or deletes them.
type Report struct {
	ID uint `gorm:"primaryKey"`

	// Data holds the report document verbatim. The top level is always a
	// JSON object; the validator guarantees that before anything reaches
	// this table.
	Data datatypes.JSONMap `gorm:"type:json"`

	// Date is assigned by the database at insert time, not taken from the
	// request.
	Date time.Time

	IP string

	UserAgentID uint `gorm:"index;not null"`
	TagID       uint `gorm:"index;not null"`

	UserAgentRow UserAgent `gorm:"foreignKey:UserAgentID"`
	TagRow       Tag       `gorm:"foreignKey:TagID"`
}

// UserAgent is a dimension row, one per distinct User-Agent string ever
// seen (including the empty string). Created on first sighting, reused
// afterwards, never deleted.
type UserAgent struct {
	ID        uint   `gorm:"primaryKey"`
	UserAgent string `gorm:"uniqueIndex;not null"`
}

// Tag is a dimension row per reporting endpoint tag.
type Tag struct {
	ID  uint   `gorm:"primaryKey"`
	Tag string `gorm:"uniqueIndex;size:20;not null"`
}
