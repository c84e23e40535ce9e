package models

import (
	"errors"
	"time"
)

// ErrDuplicateEntry means the household already stores an entry with that id.
var ErrDuplicateEntry = errors.New("entry already stored")

// EntryRecord is the stored row for one Entry. EntryID mirrors Payload.ID and
// OccurredAt holds the payload's day key.
type EntryRecord struct {
	ID              string  `gorm:"primaryKey"`
	HouseholdID     string  `gorm:"not null;uniqueIndex:idx_entries_household_entry"`
	EntryID         string  `gorm:"not null;uniqueIndex:idx_entries_household_entry"`
	OccurredAt      string  `gorm:"not null"`
	Payload         Entry   `gorm:"serializer:json;not null"`
	CreatedByUserID *string `gorm:"column:created_by_user_id"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (EntryRecord) TableName() string {
	return "entries"
}

// OwnerID returns the recorded owner, or "" for records that predate ownership.
func (record EntryRecord) OwnerID() string {
	if record.CreatedByUserID == nil {
		return ""
	}
	return *record.CreatedByUserID
}

type CachedResponse struct {
	Generation  string `gorm:"primaryKey"`
	RequestKey  string `gorm:"primaryKey"`
	Status      int    `gorm:"not null"`
	ContentType string `gorm:"not null;default:''"`
	Body        []byte
	StoredAt    time.Time `gorm:"not null"`
}
