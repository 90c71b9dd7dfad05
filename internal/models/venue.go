package models

import (
	"time"

	"gorm.io/gorm"
)

// Venue is read-only from the settlement core's perspective; rows come from
// the catalog side (here a minimal admin endpoint).
type Venue struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	ExternalEventID string         `gorm:"size:128;not null" json:"external_event_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Venue) TableName() string {
	return "venues"
}
