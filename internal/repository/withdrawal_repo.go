package repository

import (
	"tably/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(w *models.WithdrawalRecord) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) GetBySettlementKey(key string) (*models.WithdrawalRecord, error) {
	var w models.WithdrawalRecord
	if err := r.db.Where("settlement_key = ?", key).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) ListByProfile(profileID uint) ([]models.WithdrawalRecord, error) {
	var out []models.WithdrawalRecord
	err := r.db.Where("profile_id = ?", profileID).Order("id").Find(&out).Error
	return out, err
}
