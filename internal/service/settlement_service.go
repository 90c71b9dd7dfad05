package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tably/internal/domain"
	"tably/internal/ledger"
	"tably/internal/models"
	"tably/internal/repository"
	"tably/pkg/venuewallet"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// VenueWallet is the slice of the POS wallet client the coordinator needs.
// Fund is irreversible and non-idempotent; Balance is a plain read.
type VenueWallet interface {
	Fund(ctx context.Context, eventID, customerID string, amountCents int64) error
	Balance(ctx context.Context, eventID, customerID string) (int64, error)
}

// SettlementService orchestrates check-in (fund the venue wallet from the
// ledger) and check-out (compute spend, record the withdrawal). All state
// transitions go through conditional updates; there is no in-process lock.
type SettlementService struct {
	ledger      *ledger.Ledger
	memberships *repository.MembershipRepository
	venues      *repository.VenueRepository
	withdrawals *repository.WithdrawalRepository
	recon       *repository.ReconciliationRepository
	wallet      VenueWallet
}

func NewSettlementService(
	ldg *ledger.Ledger,
	memberships *repository.MembershipRepository,
	venues *repository.VenueRepository,
	withdrawals *repository.WithdrawalRepository,
	recon *repository.ReconciliationRepository,
	wallet VenueWallet,
) *SettlementService {
	return &SettlementService{
		ledger:      ldg,
		memberships: memberships,
		venues:      venues,
		withdrawals: withdrawals,
		recon:       recon,
		wallet:      wallet,
	}
}

type CheckInResult struct {
	MembershipID uint  `json:"membership_id"`
	FundedCents  int64 `json:"funded_cents"`
}

type CheckOutResult struct {
	MembershipID uint  `json:"membership_id"`
	SpentCents   int64 `json:"spent_cents"`
}

// resolve loads the membership and venue and checks the external identifiers
// both settlement directions depend on.
func (s *SettlementService) resolve(op string, profileID, venueID uint) (*models.Membership, *models.Venue, error) {
	m, err := s.memberships.GetByProfileAndVenue(profileID, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.E(domain.KindNotFound, op, "no membership for this venue")
		}
		return nil, nil, domain.Wrap(domain.KindUnknown, op, "membership lookup", err)
	}
	v, err := s.venues.GetByID(venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.E(domain.KindNotFound, op, "venue not found")
		}
		return nil, nil, domain.Wrap(domain.KindUnknown, op, "venue lookup", err)
	}
	if m.ExternalCustomerID == "" || v.ExternalEventID == "" {
		// Not retryable without an operator fixing the catalog data.
		return nil, nil, domain.E(domain.KindConfig, op,
			fmt.Sprintf("unresolvable external ids for membership %d / venue %d", m.ID, v.ID))
	}
	return m, v, nil
}

// CheckIn funds the venue wallet with the profile's full available balance.
// The fund call is the last thing attempted before any local mutation: a
// failure before it completes leaves nothing to clean up, while any failure
// after it succeeds is reconciliation work, never a retry.
func (s *SettlementService) CheckIn(ctx context.Context, profileID, venueID uint) (*CheckInResult, error) {
	const op = "settlement.CheckIn"

	m, v, err := s.resolve(op, profileID, venueID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.MembershipActive {
		return nil, domain.E(domain.KindValidation, op, "membership is not active (already checked in?)")
	}

	amount, err := s.ledger.AvailableBalance(profileID)
	if err != nil {
		return nil, domain.Wrap(domain.KindUnknown, op, "balance read", err)
	}
	if amount <= 0 {
		return nil, domain.E(domain.KindValidation, op, "no available balance to check in with")
	}

	checkInRef := uuid.NewString()

	if err := s.wallet.Fund(ctx, v.ExternalEventID, m.ExternalCustomerID, amount); err != nil {
		if venuewallet.IsAmbiguous(err) {
			// The venue wallet may already hold the funds.
			s.flag(&models.ReconciliationFlag{
				Kind:        domain.ReconCheckInUnrecorded,
				ProfileID:   profileID,
				Reference:   checkInRef,
				AmountCents: amount,
				Detail:      fmt.Sprintf("membership %d: fund outcome unknown: %v", m.ID, err),
			})
			return nil, domain.Wrap(domain.KindReconciliation, op, "fund outcome unknown", err)
		}
		return nil, domain.Wrap(domain.KindExternal, op, "venue wallet fund failed", err)
	}

	rows, err := s.memberships.MarkCheckedIn(m.ID, amount, checkInRef, time.Now())
	if err != nil || rows == 0 {
		// The venue wallet is already funded; retrying would double-fund.
		detail := fmt.Sprintf("membership %d funded %d cents but not transitioned", m.ID, amount)
		if err != nil {
			detail += ": " + err.Error()
		} else {
			detail += ": lost race with a concurrent check-in"
		}
		s.flag(&models.ReconciliationFlag{
			Kind:        domain.ReconCheckInUnrecorded,
			ProfileID:   profileID,
			Reference:   checkInRef,
			AmountCents: amount,
			Detail:      detail,
		})
		return nil, domain.Wrap(domain.KindReconciliation, op, "venue funded but membership state not recorded", err)
	}

	logrus.WithFields(logrus.Fields{
		"profile_id":   profileID,
		"venue_id":     venueID,
		"funded_cents": amount,
		"check_in_ref": checkInRef,
	}).Info("check-in funded")
	return &CheckInResult{MembershipID: m.ID, FundedCents: amount}, nil
}

// CheckOut reads the venue wallet's remaining balance, records the spend as a
// withdrawal keyed by the check-in reference, and resets the membership. The
// settlement key is stable across retries of the same check-out, so a retried
// request cannot record the spend twice.
func (s *SettlementService) CheckOut(ctx context.Context, profileID, venueID uint) (*CheckOutResult, error) {
	const op = "settlement.CheckOut"

	m, v, err := s.resolve(op, profileID, venueID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.MembershipCheckedIn {
		return nil, domain.E(domain.KindValidation, op, "membership is not checked in")
	}
	if m.LastFundedCents == nil || m.CheckInRef == nil {
		return nil, domain.E(domain.KindValidation, op, "membership has no recorded funding amount")
	}

	// Fail closed: without the balance read, spend cannot be computed.
	current, err := s.wallet.Balance(ctx, v.ExternalEventID, m.ExternalCustomerID)
	if err != nil {
		return nil, domain.Wrap(domain.KindExternal, op, "venue wallet balance read failed", err)
	}

	spent := *m.LastFundedCents - current
	if spent < 0 {
		logrus.WithFields(logrus.Fields{
			"profile_id":    profileID,
			"venue_id":      venueID,
			"funded_cents":  *m.LastFundedCents,
			"balance_cents": current,
		}).Warn("check-out: venue wallet balance exceeds funded amount, treating spend as zero")
		spent = 0
	}

	if spent > 0 {
		w := &models.WithdrawalRecord{
			ProfileID:     profileID,
			VenueID:       venueID,
			AmountCents:   spent,
			SettlementKey: "settle-" + *m.CheckInRef,
		}
		if err := s.withdrawals.Create(w); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A previous attempt of this same check-out already recorded
				// the spend. Report the settled amount, not this recomputation
				// (the wallet may have moved between attempts), and proceed to
				// the membership reset.
				if prev, lookupErr := s.withdrawals.GetBySettlementKey(w.SettlementKey); lookupErr == nil {
					spent = prev.AmountCents
				}
				logrus.WithField("settlement_key", w.SettlementKey).
					Info("check-out: spend already settled for this episode")
			} else {
				// Spend is known but not durably recorded, and a second
				// balance read would not re-derive it (the wallet may move).
				s.flag(&models.ReconciliationFlag{
					Kind:        domain.ReconSpendUnrecorded,
					ProfileID:   profileID,
					Reference:   *m.CheckInRef,
					AmountCents: spent,
					Detail:      fmt.Sprintf("membership %d: spend %d cents computed but withdrawal insert failed: %v", m.ID, spent, err),
				})
				return nil, domain.Wrap(domain.KindReconciliation, op, "spend computed but not recorded", err)
			}
		}
	}

	rows, err := s.memberships.MarkActive(m.ID)
	if err != nil || rows == 0 {
		// Non-financial: the withdrawal (if any) is durably recorded, only the
		// membership status is inconsistent.
		detail := fmt.Sprintf("membership %d: withdrawal settled but status not reset", m.ID)
		if err != nil {
			detail += ": " + err.Error()
		}
		s.flag(&models.ReconciliationFlag{
			Kind:        domain.ReconCheckOutIncomplete,
			ProfileID:   profileID,
			Reference:   *m.CheckInRef,
			AmountCents: spent,
			Detail:      detail,
		})
		return nil, domain.Wrap(domain.KindReconciliation, op, "spend recorded but membership not reset", err)
	}

	logrus.WithFields(logrus.Fields{
		"profile_id":   profileID,
		"venue_id":     venueID,
		"spent_cents":  spent,
		"check_in_ref": *m.CheckInRef,
	}).Info("check-out settled")
	return &CheckOutResult{MembershipID: m.ID, SpentCents: spent}, nil
}

// flag persists a reconciliation fault for operators. Persist errors are
// logged loudly; the fault itself is already being surfaced to the caller.
func (s *SettlementService) flag(f *models.ReconciliationFlag) {
	logrus.WithFields(logrus.Fields{
		"kind":         f.Kind,
		"profile_id":   f.ProfileID,
		"reference":    f.Reference,
		"amount_cents": f.AmountCents,
		"detail":       f.Detail,
	}).Error("reconciliation required")
	if err := s.recon.Create(f); err != nil {
		logrus.WithError(err).WithField("detail", f.Detail).
			Error("failed to persist reconciliation flag, manual follow-up from logs required")
	}
}
