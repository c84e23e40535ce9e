package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/sidetrack/internal/models"
	"gorm.io/gorm"
)

type InviteRepository struct {
	database *gorm.DB
}

func NewInviteRepository(database *gorm.DB) *InviteRepository {
	return &InviteRepository{database: database}
}

func (repo *InviteRepository) Create(invite *models.HouseholdInvite) error {
	if invite.ID == "" {
		invite.ID = uuid.NewString()
	}
	return repo.database.Create(invite).Error
}

func (repo *InviteRepository) ListByHousehold(householdID string) ([]models.HouseholdInvite, error) {
	invites := make([]models.HouseholdInvite, 0)
	if err := repo.database.
		Where("household_id = ?", householdID).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

func (repo *InviteRepository) ListAcceptedByHousehold(householdID string) ([]models.HouseholdInvite, error) {
	invites := make([]models.HouseholdInvite, 0)
	if err := repo.database.
		Where("household_id = ? AND accepted_by_user_id IS NOT NULL", householdID).
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// Revoke flags an invite of householdID as revoked and reports whether it existed.
func (repo *InviteRepository) Revoke(householdID string, inviteID string) (bool, error) {
	result := repo.database.Model(&models.HouseholdInvite{}).
		Where("id = ? AND household_id = ?", inviteID, householdID).
		Update("revoked", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindLatestActiveByEmail returns the newest invite for email that is neither
// accepted, revoked nor expired at now.
func (repo *InviteRepository) FindLatestActiveByEmail(email string, now time.Time) (models.HouseholdInvite, bool, error) {
	var invite models.HouseholdInvite
	err := repo.database.
		Where("lower(invited_email) = ? AND revoked = ? AND accepted_at IS NULL AND expires_at > ?", email, false, now).
		Order("created_at DESC").
		First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HouseholdInvite{}, false, nil
	}
	if err != nil {
		return models.HouseholdInvite{}, false, err
	}
	return invite, true, nil
}

func (repo *InviteRepository) MarkAccepted(inviteID string, userID string, acceptedAt time.Time) error {
	return repo.database.Model(&models.HouseholdInvite{}).
		Where("id = ?", inviteID).
		Updates(map[string]any{
			"accepted_at":         acceptedAt,
			"accepted_by_user_id": userID,
		}).Error
}
