package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/sidetrack/internal/models"
	"gorm.io/gorm"
)

type ShareLinkRepository struct {
	database *gorm.DB
}

func NewShareLinkRepository(database *gorm.DB) *ShareLinkRepository {
	return &ShareLinkRepository{database: database}
}

func (repo *ShareLinkRepository) Create(link *models.ShareLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	return repo.database.Create(link).Error
}

func (repo *ShareLinkRepository) FindByTokenHash(tokenHash string) (models.ShareLink, bool, error) {
	var link models.ShareLink
	err := repo.database.Where("token_hash = ?", tokenHash).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ShareLink{}, false, nil
	}
	if err != nil {
		return models.ShareLink{}, false, err
	}
	return link, true, nil
}

func (repo *ShareLinkRepository) TouchAccessed(linkID string, accessedAt time.Time) error {
	return repo.database.Model(&models.ShareLink{}).
		Where("id = ?", linkID).
		Update("last_accessed_at", accessedAt).Error
}

// RevokeByHousehold revokes every live link of the household and returns how
// many were changed.
func (repo *ShareLinkRepository) RevokeByHousehold(householdID string) (int64, error) {
	result := repo.database.Model(&models.ShareLink{}).
		Where("household_id = ? AND revoked = ?", householdID, false).
		Update("revoked", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
