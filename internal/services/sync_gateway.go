package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/terraincognita07/sidetrack/internal/models"
)

var (
	ErrNotEntryOwner  = errors.New("cannot modify entries created by another user")
	ErrSyncFailed     = errors.New("sync failed")
	ErrSessionMissing = errors.New("session required")
)

type EntryRecordRepository interface {
	ListByHousehold(householdID string) ([]models.EntryRecord, error)
	FindByEntryID(householdID string, entryID string) (models.EntryRecord, bool, error)
	Create(record *models.EntryRecord) error
	ReplacePayload(record *models.EntryRecord, payload models.Entry, occurredAt string) error
	Delete(record *models.EntryRecord) error
}

// SyncResult counts what a push did. Rejected lists ids of entries that failed
// validation and were not stored.
type SyncResult struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Rejected []string `json:"rejected"`
}

// SyncGateway moves entries between a client collection and the household's
// stored records. Conflicts are settled by record ownership only.
type SyncGateway struct {
	entries EntryRecordRepository
}

func NewSyncGateway(entries EntryRecordRepository) *SyncGateway {
	return &SyncGateway{entries: entries}
}

// Push stores entries one at a time. Records owned by someone else are left
// untouched and counted as skipped. A storage error stops the loop and the
// counts so far are returned with it; pushing again finishes the rest.
func (gateway *SyncGateway) Push(session *Session, entries []models.Entry) (SyncResult, error) {
	result := SyncResult{Rejected: []string{}}
	if session == nil || session.HouseholdID == "" {
		return result, ErrSessionMissing
	}

	for _, entry := range entries {
		entry.CreatedBy = ""
		if err := entry.Validate(); err != nil {
			result.Rejected = append(result.Rejected, entry.ID)
			continue
		}
		occurredAt, _ := entry.DayKey()

		existing, found, err := gateway.entries.FindByEntryID(session.HouseholdID, entry.ID)
		if err != nil {
			return result, fmt.Errorf("%w: %v", ErrSyncFailed, err)
		}

		if !found {
			owner := session.UserID
			record := models.EntryRecord{
				HouseholdID:     session.HouseholdID,
				OccurredAt:      occurredAt,
				Payload:         entry,
				CreatedByUserID: &owner,
			}
			err := gateway.entries.Create(&record)
			if err == nil {
				result.Inserted++
				continue
			}
			if !errors.Is(err, models.ErrDuplicateEntry) {
				return result, fmt.Errorf("%w: %v", ErrSyncFailed, err)
			}
			// Another device inserted the same id first; apply this push as an update.
			existing, found, err = gateway.entries.FindByEntryID(session.HouseholdID, entry.ID)
			if err != nil {
				return result, fmt.Errorf("%w: %v", ErrSyncFailed, err)
			}
			if !found {
				return result, fmt.Errorf("%w: entry %s missing after insert conflict", ErrSyncFailed, entry.ID)
			}
		}

		if !ownedBy(existing, session.UserID) {
			result.Skipped++
			continue
		}
		if err := gateway.entries.ReplacePayload(&existing, entry, occurredAt); err != nil {
			return result, fmt.Errorf("%w: %v", ErrSyncFailed, err)
		}
		result.Updated++
	}

	return result, nil
}

// Pull returns every household entry, newest day first, each annotated with
// the id of the user who created it.
func (gateway *SyncGateway) Pull(session *Session) ([]models.Entry, error) {
	if session == nil || session.HouseholdID == "" {
		return nil, ErrSessionMissing
	}

	records, err := gateway.entries.ListByHousehold(session.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}

	entries := make([]models.Entry, 0, len(records))
	for _, record := range records {
		entry := record.Payload
		entry.CreatedBy = record.OwnerID()
		entries = append(entries, entry)
	}
	return entries, nil
}

// Remove deletes the record holding entryID. Unknown ids are ignored.
func (gateway *SyncGateway) Remove(session *Session, entryID string) error {
	if session == nil || session.HouseholdID == "" {
		return ErrSessionMissing
	}

	record, found, err := gateway.entries.FindByEntryID(session.HouseholdID, entryID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	if !found {
		return nil
	}
	if !ownedBy(record, session.UserID) {
		return ErrNotEntryOwner
	}
	if err := gateway.entries.Delete(&record); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}

// CanEdit reports whether the session may change entry: records without an
// owner stay editable by every household member.
func CanEdit(session *Session, entry models.Entry) bool {
	if session == nil || session.UserID == "" {
		return false
	}
	return entry.CreatedBy == "" || entry.CreatedBy == session.UserID
}

func ownedBy(record models.EntryRecord, userID string) bool {
	owner := record.OwnerID()
	return owner == "" || owner == userID
}

// MergeEntries unions local and remote by id. The remote copy replaces a local
// one with the same id; the result is ordered newest first.
func MergeEntries(local []models.Entry, remote []models.Entry) []models.Entry {
	byID := make(map[string]int, len(local)+len(remote))
	merged := make([]models.Entry, 0, len(local)+len(remote))
	for _, entry := range local {
		if index, ok := byID[entry.ID]; ok {
			merged[index] = entry
			continue
		}
		byID[entry.ID] = len(merged)
		merged = append(merged, entry)
	}
	for _, entry := range remote {
		if index, ok := byID[entry.ID]; ok {
			merged[index] = entry
			continue
		}
		byID[entry.ID] = len(merged)
		merged = append(merged, entry)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		left, leftOK := ParseEntryTime(merged[i].Date)
		right, rightOK := ParseEntryTime(merged[j].Date)
		if leftOK && rightOK {
			return left.After(right)
		}
		return merged[i].Date > merged[j].Date
	})
	return merged
}
