package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/sidetrack/internal/models"
	"gorm.io/gorm"
)

type LoginCodeRepository struct {
	database *gorm.DB
}

func NewLoginCodeRepository(database *gorm.DB) *LoginCodeRepository {
	return &LoginCodeRepository{database: database}
}

// ReplaceUnused marks every unused code for code.Email as used and stores code.
func (repo *LoginCodeRepository) ReplaceUnused(code *models.LoginCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.LoginCode{}).
			Where("email = ? AND used = ?", code.Email, false).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

// ListActive returns unused codes for email that expire after now, newest first.
func (repo *LoginCodeRepository) ListActive(email string, now time.Time) ([]models.LoginCode, error) {
	codes := make([]models.LoginCode, 0)
	if err := repo.database.
		Where("email = ? AND used = ? AND expires_at > ?", email, false, now).
		Order("created_at DESC").
		Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// MarkUsed consumes the code and reports false when it was already used.
func (repo *LoginCodeRepository) MarkUsed(codeID string) (bool, error) {
	result := repo.database.Model(&models.LoginCode{}).
		Where("id = ? AND used = ?", codeID, false).
		Update("used", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteExpired removes codes that expired before cutoff.
func (repo *LoginCodeRepository) DeleteExpired(cutoff time.Time) (int64, error) {
	result := repo.database.Where("expires_at < ?", cutoff).Delete(&models.LoginCode{})
	return result.RowsAffected, result.Error
}
