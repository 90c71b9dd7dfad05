package repository

import (
	"time"

	"tably/internal/domain"
	"tably/internal/models"

	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(m *models.Membership) error {
	return r.db.Create(m).Error
}

func (r *MembershipRepository) GetByProfileAndVenue(profileID, venueID uint) (*models.Membership, error) {
	var m models.Membership
	err := r.db.Where("profile_id = ? AND venue_id = ?", profileID, venueID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkCheckedIn transitions ACTIVE -> CHECKED_IN, recording the funded amount
// and the check-in reference. The status guard loses the race against a
// second concurrent check-in: exactly one caller matches a row.
func (r *MembershipRepository) MarkCheckedIn(id uint, fundedCents int64, checkInRef string, at time.Time) (int64, error) {
	res := r.db.Model(&models.Membership{}).
		Where("id = ? AND status = ?", id, domain.MembershipActive).
		Updates(map[string]interface{}{
			"status":            domain.MembershipCheckedIn,
			"last_funded_cents": fundedCents,
			"check_in_ref":      checkInRef,
			"last_check_in_at":  at,
		})
	return res.RowsAffected, res.Error
}

// MarkActive resets CHECKED_IN -> ACTIVE, clearing the funding episode.
func (r *MembershipRepository) MarkActive(id uint) (int64, error) {
	res := r.db.Model(&models.Membership{}).
		Where("id = ? AND status = ?", id, domain.MembershipCheckedIn).
		Updates(map[string]interface{}{
			"status":            domain.MembershipActive,
			"last_funded_cents": nil,
			"check_in_ref":      nil,
			"last_check_in_at":  nil,
		})
	return res.RowsAffected, res.Error
}
