package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"tably/internal/database"
	"tably/internal/domain"
	"tably/internal/ledger"
	"tably/internal/models"
	"tably/internal/repository"

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

func seedProfile(t *testing.T, db *gorm.DB, email string, walletAddress *string) *models.Profile {
	t.Helper()
	p := &models.Profile{Email: email, Role: domain.RoleMember, WalletAddress: walletAddress}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func seedVenue(t *testing.T, db *gorm.DB, name, eventID string) *models.Venue {
	t.Helper()
	v := &models.Venue{Name: name, ExternalEventID: eventID}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed venue: %v", err)
	}
	return v
}

func seedMembership(t *testing.T, db *gorm.DB, profileID, venueID uint, customerID string) *models.Membership {
	t.Helper()
	m := &models.Membership{
		ProfileID:          profileID,
		VenueID:            venueID,
		Status:             domain.MembershipActive,
		ExternalCustomerID: customerID,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	return m
}

func seedStake(t *testing.T, db *gorm.DB, profileID uint, cents int64, sig, status string) *models.StakeRecord {
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
	return s
}

func strPtr(s string) *string { return &s }

// fakeWallet implements VenueWallet for coordinator tests. onFund runs after
// the fund "lands", before control returns, so tests can race the store.
type fakeWallet struct {
	fundErr    error
	fundCalls  int
	lastFunded int64
	onFund     func()
	balance    int64
	balanceErr error
}

func (f *fakeWallet) Fund(ctx context.Context, eventID, customerID string, amountCents int64) error {
	f.fundCalls++
	if f.fundErr != nil {
		return f.fundErr
	}
	f.lastFunded = amountCents
	if f.onFund != nil {
		f.onFund()
	}
	return nil
}

func (f *fakeWallet) Balance(ctx context.Context, eventID, customerID string) (int64, error) {
	return f.balance, f.balanceErr
}

// fakeChain implements ChainTransfer for payout tests.
type fakeChain struct {
	err        error
	transfers  []int64
	addresses  []string
	onTransfer func()
	sigSeq     int
}

func (f *fakeChain) Transfer(ctx context.Context, toAddress string, amountCents int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.transfers = append(f.transfers, amountCents)
	f.addresses = append(f.addresses, toAddress)
	if f.onTransfer != nil {
		f.onTransfer()
	}
	f.sigSeq++
	return fmt.Sprintf("tx-sig-%d", f.sigSeq), nil
}

func newSettlement(db *gorm.DB, wallet VenueWallet) *SettlementService {
	return NewSettlementService(
		ledger.New(db),
		repository.NewMembershipRepository(db),
		repository.NewVenueRepository(db),
		repository.NewWithdrawalRepository(db),
		repository.NewReconciliationRepository(db),
		wallet,
	)
}

func openFlags(t *testing.T, db *gorm.DB) []models.ReconciliationFlag {
	t.Helper()
	flags, err := repository.NewReconciliationRepository(db).ListOpen()
	if err != nil {
		t.Fatalf("list flags: %v", err)
	}
	return flags
}
