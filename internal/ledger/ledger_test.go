package ledger

import (
	"path/filepath"
	"testing"

	"tably/internal/database"
	"tably/internal/domain"
	"tably/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, email string) *models.Profile {
	t.Helper()
	p := &models.Profile{Email: email, Role: domain.RoleMember}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func seedStake(t *testing.T, db *gorm.DB, profileID uint, cents int64, sig, status string) {
	t.Helper()
	s := &models.StakeRecord{
		ProfileID:        profileID,
		AmountCents:      cents,
		DepositSignature: sig,
		Status:           status,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed stake: %v", err)
	}
}

func TestAvailableBalance(t *testing.T) {
	db := newTestDB(t)
	ldg := New(db)
	p := seedProfile(t, db, "member@example.com")

	t.Run("stakes minus withdrawals", func(t *testing.T) {
		seedStake(t, db, p.ID, 5000, "sig-a", domain.StakeStatusStaked)
		seedStake(t, db, p.ID, 3000, "sig-b", domain.StakeStatusStaked)
		if err := db.Create(&models.WithdrawalRecord{
			ProfileID:     p.ID,
			AmountCents:   1000,
			SettlementKey: "settle-1",
		}).Error; err != nil {
			t.Fatalf("seed withdrawal: %v", err)
		}

		got, err := ldg.AvailableBalance(p.ID)
		if err != nil {
			t.Fatalf("AvailableBalance: %v", err)
		}
		if got != 7000 {
			t.Errorf("AvailableBalance = %d, want 7000", got)
		}
	})

	t.Run("unstake-requested stakes still count", func(t *testing.T) {
		seedStake(t, db, p.ID, 2000, "sig-c", domain.StakeStatusUnstakeRequested)
		got, err := ldg.AvailableBalance(p.ID)
		if err != nil {
			t.Fatalf("AvailableBalance: %v", err)
		}
		if got != 9000 {
			t.Errorf("AvailableBalance = %d, want 9000", got)
		}
	})

	t.Run("unstaked and unconfirmed stakes do not count", func(t *testing.T) {
		seedStake(t, db, p.ID, 10000, "sig-d", domain.StakeStatusUnstaked)
		seedStake(t, db, p.ID, 10000, "sig-e", domain.StakeStatusPayoutUnconfirmed)
		got, err := ldg.AvailableBalance(p.ID)
		if err != nil {
			t.Fatalf("AvailableBalance: %v", err)
		}
		if got != 9000 {
			t.Errorf("AvailableBalance = %d, want 9000", got)
		}
	})

	t.Run("empty profile is zero", func(t *testing.T) {
		other := seedProfile(t, db, "empty@example.com")
		got, err := ldg.AvailableBalance(other.ID)
		if err != nil {
			t.Fatalf("AvailableBalance: %v", err)
		}
		if got != 0 {
			t.Errorf("AvailableBalance = %d, want 0", got)
		}
	})
}

func TestNegativeBalanceClampedOnlyAtPresentation(t *testing.T) {
	db := newTestDB(t)
	ldg := New(db)
	p := seedProfile(t, db, "broke@example.com")

	seedStake(t, db, p.ID, 1000, "sig-neg", domain.StakeStatusStaked)
	if err := db.Create(&models.WithdrawalRecord{
		ProfileID:     p.ID,
		AmountCents:   2500,
		SettlementKey: "settle-neg",
	}).Error; err != nil {
		t.Fatalf("seed withdrawal: %v", err)
	}

	internal, err := ldg.AvailableBalance(p.ID)
	if err != nil {
		t.Fatalf("AvailableBalance: %v", err)
	}
	if internal != -1500 {
		t.Errorf("AvailableBalance = %d, want -1500 (fault must be visible internally)", internal)
	}

	presented, err := ldg.PresentedBalance(p.ID)
	if err != nil {
		t.Fatalf("PresentedBalance: %v", err)
	}
	if presented != 0 {
		t.Errorf("PresentedBalance = %d, want 0", presented)
	}
}
