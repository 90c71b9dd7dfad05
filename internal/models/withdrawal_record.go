package models

import (
	"time"
)

// WithdrawalRecord is an append-only outflow against a profile's ledger:
// the venue-spend settlement recorded at check-out. SettlementKey is stable
// across retries of the same check-out episode (derived from the check-in
// reference), so a retried check-out cannot record the same spend twice.
type WithdrawalRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProfileID     uint      `gorm:"not null;index" json:"profile_id"`
	AmountCents   int64     `gorm:"not null" json:"amount_cents"`
	SettlementKey string    `gorm:"size:128;uniqueIndex;not null" json:"settlement_key"`
	VenueID       uint      `gorm:"index" json:"venue_id"`
	CreatedAt     time.Time `json:"created_at"`

	Profile Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

func (WithdrawalRecord) TableName() string {
	return "withdrawal_records"
}
