package repository

import (
	"tably/internal/models"

	"gorm.io/gorm"
)

type VenueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

func (r *VenueRepository) Create(v *models.Venue) error {
	return r.db.Create(v).Error
}

func (r *VenueRepository) GetByID(id uint) (*models.Venue, error) {
	var v models.Venue
	if err := r.db.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VenueRepository) List() ([]models.Venue, error) {
	var out []models.Venue
	err := r.db.Order("id").Find(&out).Error
	return out, err
}
