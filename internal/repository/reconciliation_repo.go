package repository

import (
	"time"

	"tably/internal/models"

	"gorm.io/gorm"
)

type ReconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

func (r *ReconciliationRepository) Create(f *models.ReconciliationFlag) error {
	return r.db.Create(f).Error
}

func (r *ReconciliationRepository) ListOpen() ([]models.ReconciliationFlag, error) {
	var out []models.ReconciliationFlag
	err := r.db.Where("resolved_at IS NULL").Order("id").Find(&out).Error
	return out, err
}

func (r *ReconciliationRepository) Resolve(id uint) (int64, error) {
	res := r.db.Model(&models.ReconciliationFlag{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Update("resolved_at", time.Now())
	return res.RowsAffected, res.Error
}
