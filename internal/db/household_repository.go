package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/sidetrack/internal/models"
	"gorm.io/gorm"
)

type HouseholdRepository struct {
	database *gorm.DB
}

func NewHouseholdRepository(database *gorm.DB) *HouseholdRepository {
	return &HouseholdRepository{database: database}
}

func (repo *HouseholdRepository) FindByID(householdID string) (models.Household, bool, error) {
	var household models.Household
	err := repo.database.Where("id = ?", householdID).First(&household).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Household{}, false, nil
	}
	if err != nil {
		return models.Household{}, false, err
	}
	return household, true, nil
}

// FindOwnedBy returns the oldest household owned by userID.
func (repo *HouseholdRepository) FindOwnedBy(userID string) (models.Household, bool, error) {
	var household models.Household
	err := repo.database.
		Where("owner_user_id = ?", userID).
		Order("created_at ASC").
		First(&household).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Household{}, false, nil
	}
	if err != nil {
		return models.Household{}, false, err
	}
	return household, true, nil
}

func (repo *HouseholdRepository) FindActiveMembership(userID string) (models.HouseholdMember, bool, error) {
	var member models.HouseholdMember
	err := repo.database.
		Where("user_id = ? AND removed_at IS NULL", userID).
		Order("created_at ASC").
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HouseholdMember{}, false, nil
	}
	if err != nil {
		return models.HouseholdMember{}, false, err
	}
	return member, true, nil
}

func (repo *HouseholdRepository) Create(household *models.Household) error {
	if household.ID == "" {
		household.ID = uuid.NewString()
	}
	return repo.database.Create(household).Error
}

func (repo *HouseholdRepository) ListAll() ([]models.Household, error) {
	households := make([]models.Household, 0)
	if err := repo.database.Order("created_at ASC").Find(&households).Error; err != nil {
		return nil, err
	}
	return households, nil
}

func (repo *HouseholdRepository) FindMember(householdID string, userID string) (models.HouseholdMember, bool, error) {
	var member models.HouseholdMember
	err := repo.database.
		Where("household_id = ? AND user_id = ?", householdID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HouseholdMember{}, false, nil
	}
	if err != nil {
		return models.HouseholdMember{}, false, err
	}
	return member, true, nil
}

func (repo *HouseholdRepository) AddMember(member *models.HouseholdMember) error {
	return repo.database.Create(member).Error
}

// ReactivateMember clears a previous soft removal and applies role.
func (repo *HouseholdRepository) ReactivateMember(householdID string, userID string, role string) error {
	return repo.database.Model(&models.HouseholdMember{}).
		Where("household_id = ? AND user_id = ?", householdID, userID).
		Updates(map[string]any{
			"removed_at": nil,
			"role":       role,
		}).Error
}

func (repo *HouseholdRepository) ListActiveMembers(householdID string) ([]models.HouseholdMember, error) {
	members := make([]models.HouseholdMember, 0)
	if err := repo.database.
		Where("household_id = ? AND removed_at IS NULL", householdID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// RemoveMember soft-deletes a membership and reports whether a row changed.
func (repo *HouseholdRepository) RemoveMember(householdID string, userID string, removedAt time.Time) (bool, error) {
	result := repo.database.Model(&models.HouseholdMember{}).
		Where("household_id = ? AND user_id = ? AND removed_at IS NULL", householdID, userID).
		Update("removed_at", removedAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *HouseholdRepository) UpdateDisplayName(householdID string, userID string, displayName string) error {
	return repo.database.Model(&models.HouseholdMember{}).
		Where("household_id = ? AND user_id = ?", householdID, userID).
		Update("display_name", displayName).Error
}

func (repo *HouseholdRepository) UpdatePatientName(householdID string, patientName string) error {
	return repo.database.Model(&models.Household{}).
		Where("id = ?", householdID).
		Update("patient_name", patientName).Error
}
