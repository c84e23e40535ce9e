package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/terraincognita07/sidetrack/internal/models"
	"gorm.io/gorm"
)

type EntryRepository struct {
	database *gorm.DB
}

func NewEntryRepository(database *gorm.DB) *EntryRepository {
	return &EntryRepository{database: database}
}

// ListByHousehold returns every record of the household, newest day first.
func (repo *EntryRepository) ListByHousehold(householdID string) ([]models.EntryRecord, error) {
	records := make([]models.EntryRecord, 0)
	if err := repo.database.
		Where("household_id = ?", householdID).
		Order("occurred_at DESC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListSince returns records whose day key is on or after sinceDay (YYYY-MM-DD),
// newest first.
func (repo *EntryRepository) ListSince(householdID string, sinceDay string) ([]models.EntryRecord, error) {
	records := make([]models.EntryRecord, 0)
	if err := repo.database.
		Where("household_id = ? AND occurred_at >= ?", householdID, sinceDay).
		Order("occurred_at DESC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *EntryRepository) FindByEntryID(householdID string, entryID string) (models.EntryRecord, bool, error) {
	var record models.EntryRecord
	err := repo.database.
		Where("household_id = ? AND entry_id = ?", householdID, entryID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.EntryRecord{}, false, nil
	}
	if err != nil {
		return models.EntryRecord{}, false, err
	}
	return record, true, nil
}

// Create inserts a new record. A record with the same entry id already in the
// household answers models.ErrDuplicateEntry.
func (repo *EntryRepository) Create(record *models.EntryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.EntryID = record.Payload.ID
	err := repo.database.Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", models.ErrDuplicateEntry, err)
	}
	return err
}

// ReplacePayload overwrites the stored payload and its derived day key.
func (repo *EntryRepository) ReplacePayload(record *models.EntryRecord, payload models.Entry, occurredAt string) error {
	record.Payload = payload
	record.EntryID = payload.ID
	record.OccurredAt = occurredAt
	return repo.database.Model(record).
		Select("payload", "entry_id", "occurred_at", "updated_at").
		Updates(record).Error
}

func (repo *EntryRepository) Delete(record *models.EntryRecord) error {
	return repo.database.Delete(record).Error
}

func (repo *EntryRepository) CountByHousehold(householdID string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.EntryRecord{}).
		Where("household_id = ?", householdID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
