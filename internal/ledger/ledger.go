// Package ledger derives a profile's available credit from its immutable
// stake and withdrawal rows. It is read-only; two reads separated by a
// concurrent insert may differ, but each row is seen whole or not at all.
package ledger

import (
	"tably/internal/domain"
	"tably/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// countedStatuses are the stake states that still back spendable credit.
// UNSTAKED and PAYOUT_UNCONFIRMED funds have left (or may have left) custody.
var countedStatuses = []string{domain.StakeStatusStaked, domain.StakeStatusUnstakeRequested}

// AvailableBalance returns staked minus withdrawn, in minor units. A negative
// result is a data-integrity fault: it is logged as such and returned as-is;
// clamping happens only at the presentation boundary (PresentedBalance).
func (l *Ledger) AvailableBalance(profileID uint) (int64, error) {
	var staked int64
	err := l.db.Model(&models.StakeRecord{}).
		Where("profile_id = ? AND status IN ?", profileID, countedStatuses).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&staked).Error
	if err != nil {
		return 0, err
	}

	var withdrawn int64
	err = l.db.Model(&models.WithdrawalRecord{}).
		Where("profile_id = ?", profileID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&withdrawn).Error
	if err != nil {
		return 0, err
	}

	balance := staked - withdrawn
	if balance < 0 {
		logrus.WithFields(logrus.Fields{
			"profile_id":      profileID,
			"staked_cents":    staked,
			"withdrawn_cents": withdrawn,
			"balance_cents":   balance,
		}).Error("ledger: negative available balance, data integrity fault")
	}
	return balance, nil
}

// PresentedBalance is AvailableBalance clamped at zero for display.
func (l *Ledger) PresentedBalance(profileID uint) (int64, error) {
	balance, err := l.AvailableBalance(profileID)
	if err != nil {
		return 0, err
	}
	if balance < 0 {
		return 0, nil
	}
	return balance, nil
}
