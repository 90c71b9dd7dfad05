package models

import (
	"time"
)

// ReconciliationFlag is the operator queue for states where an irreversible
// external effect happened but the ledger could not be confirmed consistent
// with it. Flags are never retried by the system; they are resolved manually.
type ReconciliationFlag struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Kind        string     `gorm:"size:40;not null;index" json:"kind"`
	ProfileID   uint       `gorm:"index" json:"profile_id"`
	Reference   string     `gorm:"size:191" json:"reference"` // membership/stake id, check-in ref, tx signature
	AmountCents int64      `json:"amount_cents"`
	Detail      string     `gorm:"type:text" json:"detail"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (ReconciliationFlag) TableName() string {
	return "reconciliation_flags"
}
