package service

import (
	"errors"

	"tably/internal/domain"
	"tably/internal/models"
	"tably/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DepositNotification is one inbound deposit event from the payment network.
// Delivery is at-least-once; Signature is the dedup key.
type DepositNotification struct {
	Signature     string `json:"signature"`
	SourceAddress string `json:"source_address"`
	AmountCents   int64  `json:"amount_cents"`
}

// DepositService ingests deposit notifications. The unique constraint on
// deposit_signature is the sole idempotency mechanism: duplicates (sequential
// or concurrent) resolve to the single existing record.
type DepositService struct {
	stakes   *repository.StakeRepository
	profiles *repository.ProfileRepository
}

func NewDepositService(stakes *repository.StakeRepository, profiles *repository.ProfileRepository) *DepositService {
	return &DepositService{stakes: stakes, profiles: profiles}
}

// Ingest records the deposit as a STAKED stake. Returns (nil, nil) when the
// source address resolves to no profile: that is logged for manual review and
// must not fail the delivery, or the sender would redeliver forever.
func (s *DepositService) Ingest(n DepositNotification) (*models.StakeRecord, error) {
	const op = "deposit.Ingest"

	if n.Signature == "" {
		return nil, domain.E(domain.KindValidation, op, "missing transaction signature")
	}
	if n.AmountCents <= 0 {
		return nil, domain.E(domain.KindValidation, op, "non-positive deposit amount")
	}

	if existing, err := s.stakes.GetByDepositSignature(n.Signature); err == nil {
		logrus.WithFields(logrus.Fields{
			"signature": n.Signature,
			"stake_id":  existing.ID,
		}).Info("deposit: duplicate delivery ignored")
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Wrap(domain.KindUnknown, op, "signature lookup", err)
	}

	profile, err := s.profiles.GetByWalletAddress(n.SourceAddress)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithFields(logrus.Fields{
				"signature":      n.Signature,
				"source_address": n.SourceAddress,
				"amount_cents":   n.AmountCents,
			}).Warn("deposit: no profile for source address, leaving for manual review")
			return nil, nil
		}
		return nil, domain.Wrap(domain.KindUnknown, op, "profile lookup", err)
	}

	rec := &models.StakeRecord{
		ProfileID:        profile.ID,
		AmountCents:      n.AmountCents,
		DepositSignature: n.Signature,
		SourceAddress:    n.SourceAddress,
		Status:           domain.StakeStatusStaked,
	}
	if err := s.stakes.Create(rec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent duplicate delivery: the other insert won.
			existing, lookupErr := s.stakes.GetByDepositSignature(n.Signature)
			if lookupErr != nil {
				return nil, domain.Wrap(domain.KindUnknown, op, "duplicate resolution", lookupErr)
			}
			logrus.WithField("signature", n.Signature).Info("deposit: concurrent duplicate lost insert race")
			return existing, nil
		}
		return nil, domain.Wrap(domain.KindUnknown, op, "stake insert", err)
	}

	logrus.WithFields(logrus.Fields{
		"profile_id":   profile.ID,
		"stake_id":     rec.ID,
		"amount_cents": n.AmountCents,
		"signature":    n.Signature,
	}).Info("deposit staked")
	return rec, nil
}
