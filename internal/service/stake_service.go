package service

import (
	"errors"

	"tably/internal/domain"
	"tably/internal/models"
	"tably/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StakeService is the member-facing gate over ledger history: stake and
// withdrawal listings and the unstake request transition.
type StakeService struct {
	stakes      *repository.StakeRepository
	withdrawals *repository.WithdrawalRepository
}

func NewStakeService(stakes *repository.StakeRepository, withdrawals *repository.WithdrawalRepository) *StakeService {
	return &StakeService{stakes: stakes, withdrawals: withdrawals}
}

func (s *StakeService) ListStakes(profileID uint) ([]models.StakeRecord, error) {
	return s.stakes.ListByProfile(profileID)
}

func (s *StakeService) ListWithdrawals(profileID uint) ([]models.WithdrawalRecord, error) {
	return s.withdrawals.ListByProfile(profileID)
}

// RequestUnstake queues a STAKED record for payout. The conditional update
// means a double-submit (or two concurrent submits) queues it exactly once;
// the loser sees a conflict.
func (s *StakeService) RequestUnstake(profileID, stakeID uint) error {
	const op = "stake.RequestUnstake"

	rec, err := s.stakes.GetByID(stakeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.E(domain.KindNotFound, op, "stake record not found")
		}
		return domain.Wrap(domain.KindUnknown, op, "stake lookup", err)
	}
	if rec.ProfileID != profileID {
		return domain.E(domain.KindAuthz, op, "stake record belongs to another profile")
	}

	rows, err := s.stakes.RequestUnstake(stakeID)
	if err != nil {
		return domain.Wrap(domain.KindUnknown, op, "unstake transition", err)
	}
	if rows == 0 {
		return domain.E(domain.KindValidation, op, "stake is not in a staked state")
	}

	logrus.WithFields(logrus.Fields{
		"profile_id": profileID,
		"stake_id":   stakeID,
	}).Info("unstake requested")
	return nil
}
