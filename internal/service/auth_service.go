package service

import (
	"errors"

	"tably/config"
	"tably/internal/auth"
	"tably/internal/domain"
	"tably/internal/models"
	"tably/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrWalletTaken  = errors.New("wallet address already in use")
)

type AuthService struct {
	cfg      *config.Config
	profiles *repository.ProfileRepository
}

func NewAuthService(cfg *config.Config, profiles *repository.ProfileRepository) *AuthService {
	return &AuthService{cfg: cfg, profiles: profiles}
}

func (s *AuthService) Register(email, password string, walletAddress *string) (*models.Profile, string, string, error) {
	_, err := s.profiles.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	if walletAddress != nil && *walletAddress == "" {
		walletAddress = nil
	}
	p := &models.Profile{
		Email:         email,
		PasswordHash:  string(hash),
		Role:          domain.RoleMember,
		WalletAddress: walletAddress,
	}
	if err := s.profiles.Create(p); err != nil {
		return nil, "", "", err
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, p.ID, p.Email, p.Role)
	if err != nil {
		return p, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, p.ID)
	if err != nil {
		return p, access, "", err
	}
	return p, access, refresh, nil
}

// SetWallet points the profile at a new payout destination. Deposits from the
// old address stop matching once this changes, so members update it before
// sending from a new wallet.
func (s *AuthService) SetWallet(profileID uint, addr string) error {
	if err := s.profiles.SetWalletAddress(profileID, addr); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrWalletTaken
		}
		return err
	}
	return nil
}

func (s *AuthService) Login(email, password string) (*models.Profile, string, string, error) {
	p, err := s.profiles.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, p.ID, p.Email, p.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, p.ID)
	return p, access, refresh, nil
}
