package models

import (
	"time"

	"gorm.io/gorm"
)

// Membership is a profile's standing relationship with one venue. It is
// CHECKED_IN exactly when LastFundedCents holds the amount most recently
// pushed to the venue wallet; CheckInRef identifies that funding episode and
// keys the settlement recorded at check-out.
type Membership struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	ProfileID          uint           `gorm:"not null;uniqueIndex:idx_memberships_profile_venue" json:"profile_id"`
	VenueID            uint           `gorm:"not null;uniqueIndex:idx_memberships_profile_venue" json:"venue_id"`
	Status             string         `gorm:"size:20;not null;index" json:"status"` // ACTIVE | CHECKED_IN
	ExternalCustomerID string         `gorm:"size:128;not null" json:"external_customer_id"`
	LastFundedCents    *int64         `json:"last_funded_cents"`
	CheckInRef         *string        `gorm:"size:64" json:"-"`
	LastCheckInAt      *time.Time     `json:"last_check_in_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Profile Profile `gorm:"foreignKey:ProfileID" json:"-"`
	Venue   Venue   `gorm:"foreignKey:VenueID" json:"-"`
}

func (Membership) TableName() string {
	return "memberships"
}
