package repository

import (
	"time"

	"tably/internal/domain"
	"tably/internal/models"

	"gorm.io/gorm"
)

type StakeRepository struct {
	db *gorm.DB
}

func NewStakeRepository(db *gorm.DB) *StakeRepository {
	return &StakeRepository{db: db}
}

func (r *StakeRepository) Create(s *models.StakeRecord) error {
	return r.db.Create(s).Error
}

func (r *StakeRepository) GetByID(id uint) (*models.StakeRecord, error) {
	var s models.StakeRecord
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StakeRepository) GetByDepositSignature(sig string) (*models.StakeRecord, error) {
	var s models.StakeRecord
	if err := r.db.Where("deposit_signature = ?", sig).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StakeRepository) ListByProfile(profileID uint) ([]models.StakeRecord, error) {
	var out []models.StakeRecord
	err := r.db.Where("profile_id = ?", profileID).Order("id").Find(&out).Error
	return out, err
}

// ListUnstakeRequested returns payout candidates with the owning profile
// preloaded, oldest first.
func (r *StakeRepository) ListUnstakeRequested() ([]models.StakeRecord, error) {
	var out []models.StakeRecord
	err := r.db.Preload("Profile").
		Where("status = ?", domain.StakeStatusUnstakeRequested).
		Order("id").Find(&out).Error
	return out, err
}

// RequestUnstake transitions STAKED -> UNSTAKE_REQUESTED. The status guard in
// the WHERE clause makes a double-submit match zero rows.
func (r *StakeRepository) RequestUnstake(id uint) (int64, error) {
	res := r.db.Model(&models.StakeRecord{}).
		Where("id = ? AND status = ?", id, domain.StakeStatusStaked).
		Updates(map[string]interface{}{
			"status":               domain.StakeStatusUnstakeRequested,
			"unstake_requested_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// MarkUnstaked transitions UNSTAKE_REQUESTED -> UNSTAKED, attaching the payout
// signature. Zero rows affected means the record already advanced (or was
// flagged) and the caller must not treat the payout as newly recorded.
func (r *StakeRepository) MarkUnstaked(id uint, payoutSignature string, at time.Time) (int64, error) {
	res := r.db.Model(&models.StakeRecord{}).
		Where("id = ? AND status = ?", id, domain.StakeStatusUnstakeRequested).
		Updates(map[string]interface{}{
			"status":           domain.StakeStatusUnstaked,
			"payout_signature": payoutSignature,
			"unstaked_at":      at,
		})
	return res.RowsAffected, res.Error
}

// MarkPayoutUnconfirmed pulls a record out of the payout retry set after an
// ambiguous or unrecordable transfer. Funds may have left custody; rerunning
// the batch must not pick the record up again.
func (r *StakeRepository) MarkPayoutUnconfirmed(id uint) (int64, error) {
	res := r.db.Model(&models.StakeRecord{}).
		Where("id = ? AND status = ?", id, domain.StakeStatusUnstakeRequested).
		Update("status", domain.StakeStatusPayoutUnconfirmed)
	return res.RowsAffected, res.Error
}
