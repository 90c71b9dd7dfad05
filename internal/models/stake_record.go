package models

import (
	"time"
)

// StakeRecord is one custodial deposit credited to a profile. The unique
// index on DepositSignature is the sole dedup mechanism for at-least-once
// deposit delivery: concurrent duplicates both attempt the insert and
// exactly one succeeds.
type StakeRecord struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	ProfileID        uint   `gorm:"not null;index" json:"profile_id"`
	AmountCents      int64  `gorm:"not null" json:"amount_cents"`
	DepositSignature string `gorm:"size:128;uniqueIndex;not null" json:"deposit_signature"`
	SourceAddress    string `gorm:"size:64" json:"source_address"`
	Status           string `gorm:"size:24;not null;index" json:"status"`
	// PayoutSignature is set when the payout transfer confirms
	// (UNSTAKE_REQUESTED -> UNSTAKED).
	PayoutSignature    *string    `gorm:"size:128;uniqueIndex" json:"payout_signature"`
	UnstakeRequestedAt *time.Time `json:"unstake_requested_at"`
	UnstakedAt         *time.Time `json:"unstaked_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Profile Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

func (StakeRecord) TableName() string {
	return "stake_records"
}
