package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/rockomatthews/crypto-racer/internal/models"
)

// AuthService handles authentication business logic
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// WalletProfile carries the optional profile fields a wallet login may
// attach to the account
type WalletProfile struct {
	Email     string
	Name      string
	IRacingID *int64
}

// ProcessWalletLogin finds or creates a user by wallet address. Profile
// fields are applied on first login and refreshed when they change.
func (s *AuthService) ProcessWalletLogin(walletAddress string, profile WalletProfile) (*models.User, error) {
	var user models.User

	result := s.db.Where("wallet_address = ?", walletAddress).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		user = models.User{
			WalletAddress: &walletAddress,
			Name:          profile.Name,
			IRacingID:     profile.IRacingID,
		}
		if profile.Email != "" {
			user.Email = &profile.Email
		}

		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		log.Printf("New user created: wallet=%s (ID: %d)", walletAddress, user.ID)
		return &user, nil
	}

	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	// Refresh profile fields that changed since the last login
	updates := map[string]interface{}{}
	if profile.Email != "" && (user.Email == nil || *user.Email != profile.Email) {
		updates["email"] = profile.Email
	}
	if profile.Name != "" && user.Name != profile.Name {
		updates["name"] = profile.Name
	}
	if profile.IRacingID != nil && (user.IRacingID == nil || *user.IRacingID != *profile.IRacingID) {
		updates["iracing_id"] = *profile.IRacingID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			log.Printf("Warning: failed to refresh profile for user %d: %v", user.ID, err)
		}
	}

	log.Printf("User logged in: wallet=%s (ID: %d)", walletAddress, user.ID)
	return &user, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
