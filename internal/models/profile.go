package models

import (
	"time"

	"tably/internal/domain"

	"gorm.io/gorm"
)

type Profile struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         string `gorm:"size:20;not null;index" json:"role"` // MEMBER | ADMIN
	// WalletAddress is the member's chain address; deposits from it are
	// credited to this profile and payouts are sent to it. Nil until the
	// member links a wallet.
	WalletAddress *string        `gorm:"uniqueIndex;size:64" json:"wallet_address"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsAdmin() bool { return p.Role == domain.RoleAdmin }
