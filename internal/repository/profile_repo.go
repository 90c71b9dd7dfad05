package repository

import (
	"tably/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(p *models.Profile) error {
	return r.db.Create(p).Error
}

func (r *ProfileRepository) GetByID(id uint) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByWalletAddress(addr string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.Where("wallet_address = ?", addr).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) SetWalletAddress(id uint, addr string) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", id).Update("wallet_address", addr).Error
}
