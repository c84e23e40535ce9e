package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/sidetrack/internal/models"
)

// entryDateLayout matches the millisecond UTC timestamps stored by the client.
const entryDateLayout = "2006-01-02T15:04:05.000Z07:00"

// EntryFactory builds new entries stamped with its clock.
type EntryFactory struct {
	now func() time.Time
}

func NewEntryFactory(now func() time.Time) *EntryFactory {
	if now == nil {
		now = time.Now
	}
	return &EntryFactory{now: now}
}

var defaultEntryFactory = NewEntryFactory(nil)

func CreateEntry(entryType string, severity int, notes string) (models.Entry, error) {
	return defaultEntryFactory.CreateEntry(entryType, severity, notes)
}

func CreateEventEntry(entryType string, notes string) models.Entry {
	return defaultEntryFactory.CreateEventEntry(entryType, notes)
}

func CreatePartnerObservation(entryType string, severity int, notes string) (models.Entry, error) {
	return defaultEntryFactory.CreatePartnerObservation(entryType, severity, notes)
}

func CreateDailyNote(author string, notes string, date string) models.Entry {
	return defaultEntryFactory.CreateDailyNote(author, notes, date)
}

func (factory *EntryFactory) CreateEntry(entryType string, severity int, notes string) (models.Entry, error) {
	if !models.ValidSeverity(severity) {
		return models.Entry{}, models.ErrInvalidSeverity
	}
	return models.Entry{
		ID:       NewEntryID(),
		Type:     entryType,
		Severity: &severity,
		Notes:    notes,
		Date:     factory.stamp(),
	}, nil
}

func (factory *EntryFactory) CreateEventEntry(entryType string, notes string) models.Entry {
	return models.Entry{
		ID:    NewEntryID(),
		Type:  entryType,
		Event: true,
		Notes: notes,
		Date:  factory.stamp(),
	}
}

func (factory *EntryFactory) CreatePartnerObservation(entryType string, severity int, notes string) (models.Entry, error) {
	entry, err := factory.CreateEntry(entryType, severity, notes)
	if err != nil {
		return models.Entry{}, err
	}
	entry.Author = models.AuthorPartner
	return entry, nil
}

// CreateDailyNote returns a daily_note event. Any author other than partner is
// recorded as patient; a non-empty date replaces the current timestamp.
func (factory *EntryFactory) CreateDailyNote(author string, notes string, date string) models.Entry {
	entry := factory.CreateEventEntry(models.EntryTypeDailyNote, notes)
	entry.Author = models.AuthorPatient
	if author == models.AuthorPartner {
		entry.Author = models.AuthorPartner
	}
	if date = strings.TrimSpace(date); date != "" {
		entry.Date = date
	}
	return entry
}

func (factory *EntryFactory) stamp() string {
	return factory.now().UTC().Format(entryDateLayout)
}

// NewEntryID returns a time-ordered unique id for an entry.
func NewEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
