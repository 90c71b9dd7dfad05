package service

import (
	"testing"

	"tably/internal/domain"
	"tably/internal/models"
	"tably/internal/repository"

	"gorm.io/gorm"
)

func newDeposit(db *gorm.DB) *DepositService {
	return NewDepositService(repository.NewStakeRepository(db), repository.NewProfileRepository(db))
}

func TestDepositIngest(t *testing.T) {
	t.Run("credits a stake for a known wallet", func(t *testing.T) {
		db := newTestDB(t)
		seedProfile(t, db, "m@example.com", strPtr("addr-1"))
		svc := newDeposit(db)

		rec, err := svc.Ingest(DepositNotification{
			Signature:     "sig-dep-1",
			SourceAddress: "addr-1",
			AmountCents:   5000,
		})
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if rec == nil || rec.Status != domain.StakeStatusStaked {
			t.Fatalf("rec = %+v, want STAKED record", rec)
		}
		if rec.AmountCents != 5000 {
			t.Errorf("amount = %d, want 5000", rec.AmountCents)
		}
	})

	t.Run("duplicate delivery is a no-op", func(t *testing.T) {
		db := newTestDB(t)
		seedProfile(t, db, "m@example.com", strPtr("addr-1"))
		svc := newDeposit(db)

		n := DepositNotification{Signature: "sig-dup", SourceAddress: "addr-1", AmountCents: 5000}
		first, err := svc.Ingest(n)
		if err != nil {
			t.Fatalf("first Ingest: %v", err)
		}
		second, err := svc.Ingest(n)
		if err != nil {
			t.Fatalf("second Ingest: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("second delivery created record %d, want existing %d", second.ID, first.ID)
		}

		var count int64
		db.Model(&models.StakeRecord{}).Where("deposit_signature = ?", "sig-dup").Count(&count)
		if count != 1 {
			t.Errorf("stake records = %d, want exactly 1", count)
		}
	})

	t.Run("unknown source address is acknowledged, not failed", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDeposit(db)

		rec, err := svc.Ingest(DepositNotification{
			Signature:     "sig-unknown",
			SourceAddress: "addr-nobody",
			AmountCents:   5000,
		})
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if rec != nil {
			t.Errorf("rec = %+v, want nil (left for manual review)", rec)
		}
		var count int64
		db.Model(&models.StakeRecord{}).Count(&count)
		if count != 0 {
			t.Errorf("stake records = %d, want 0", count)
		}
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		db := newTestDB(t)
		seedProfile(t, db, "m@example.com", strPtr("addr-1"))
		svc := newDeposit(db)

		_, err := svc.Ingest(DepositNotification{SourceAddress: "addr-1", AmountCents: 5000})
		if domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("kind = %v, want KindValidation", domain.KindOf(err))
		}
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		db := newTestDB(t)
		seedProfile(t, db, "m@example.com", strPtr("addr-1"))
		svc := newDeposit(db)

		_, err := svc.Ingest(DepositNotification{Signature: "sig-neg", SourceAddress: "addr-1", AmountCents: -5})
		if domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("kind = %v, want KindValidation", domain.KindOf(err))
		}
	})

	t.Run("insert losing a duplicate race resolves to the winner", func(t *testing.T) {
		db := newTestDB(t)
		p := seedProfile(t, db, "m@example.com", strPtr("addr-1"))
		svc := newDeposit(db)

		// The other delivery's insert lands between our lookup and insert;
		// seeding the row up front exercises the same duplicate-key path.
		winner := seedStake(t, db, p.ID, 5000, "sig-race", domain.StakeStatusStaked)

		rec, err := svc.Ingest(DepositNotification{Signature: "sig-race", SourceAddress: "addr-1", AmountCents: 5000})
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if rec.ID != winner.ID {
			t.Errorf("rec.ID = %d, want winner %d", rec.ID, winner.ID)
		}
	})
}
