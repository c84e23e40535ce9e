package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/sidetrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CachedResponseRepository persists offline shell responses grouped by cache
// generation.
type CachedResponseRepository struct {
	database *gorm.DB
}

func NewCachedResponseRepository(database *gorm.DB) *CachedResponseRepository {
	return &CachedResponseRepository{database: database}
}

func (repo *CachedResponseRepository) Find(ctx context.Context, generation string, requestKey string) (models.CachedResponse, bool, error) {
	var cached models.CachedResponse
	err := repo.database.WithContext(ctx).
		Where("generation = ? AND request_key = ?", generation, requestKey).
		First(&cached).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CachedResponse{}, false, nil
	}
	if err != nil {
		return models.CachedResponse{}, false, err
	}
	return cached, true, nil
}

func (repo *CachedResponseRepository) Upsert(ctx context.Context, cached *models.CachedResponse) error {
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "generation"}, {Name: "request_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "content_type", "body", "stored_at"}),
	}).Create(cached).Error
}

// UpsertAll writes a batch in one transaction so a generation is either
// populated completely or not at all.
func (repo *CachedResponseRepository) UpsertAll(ctx context.Context, batch []models.CachedResponse) error {
	if len(batch) == 0 {
		return nil
	}
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "generation"}, {Name: "request_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "content_type", "body", "stored_at"}),
		}).Create(&batch).Error
	})
}

// ListGenerations returns generation names, least recently written first.
func (repo *CachedResponseRepository) ListGenerations(ctx context.Context) ([]string, error) {
	generations := make([]string, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.CachedResponse{}).
		Group("generation").
		Order("MAX(stored_at) ASC").
		Order("generation ASC").
		Pluck("generation", &generations).Error; err != nil {
		return nil, err
	}
	return generations, nil
}

func (repo *CachedResponseRepository) DeleteGeneration(ctx context.Context, generation string) error {
	return repo.database.WithContext(ctx).
		Where("generation = ?", generation).
		Delete(&models.CachedResponse{}).Error
}
