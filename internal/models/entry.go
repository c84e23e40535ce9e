package models

import (
	"errors"
	"strings"
	"time"
)

const (
	AuthorPatient = "patient"
	AuthorPartner = "partner"
)

const (
	EntryTypeHotFlashes    = "hot_flashes"
	EntryTypeJointPain     = "joint_pain"
	EntryTypeMusclePain    = "muscle_pain"
	EntryTypeFatigue       = "fatigue"
	EntryTypeMoodChanges   = "mood_changes"
	EntryTypeNausea        = "nausea"
	EntryTypeHeadaches     = "headaches"
	EntryTypeWeightChanges = "weight_changes"
	EntryTypeSleepProblems = "sleep_problems"
	EntryTypeOther         = "other"

	EntryTypePeriodStarted = "period_started"
	EntryTypePeriodEnded   = "period_ended"
	EntryTypeSpotting      = "spotting"
	EntryTypeDailyNote     = "daily_note"
	EntryTypeDayNote       = "day_note"
	EntryTypeExercise      = "exercise"
)

const (
	MinSeverity = 1
	MaxSeverity = 5
)

var (
	ErrInvalidSeverity = errors.New("severity must be between 1 and 5")
	ErrInvalidEntry    = errors.New("invalid entry")
)

type EntryKind string

const (
	EntryKindSeverity EntryKind = "severity"
	EntryKindEvent    EntryKind = "event"
	EntryKindUnknown  EntryKind = "unknown"
)

// Entry is the payload stored for every logged item. It is either a severity
// entry (Severity set, Event false) or an event entry (Event true, no Severity).
// The JSON shape matches what the client keeps in local storage.
type Entry struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Severity  *int   `json:"severity,omitempty"`
	Event     bool   `json:"event,omitempty"`
	Notes     string `json:"notes"`
	Date      string `json:"date"`
	Author    string `json:"author,omitempty"`
	Message   string `json:"message,omitempty"`
	Exercise  string `json:"exercise,omitempty"`
	CreatedBy string `json:"_created_by_user_id,omitempty"`
}

func (entry Entry) Kind() EntryKind {
	switch {
	case entry.Event:
		return EntryKindEvent
	case entry.Severity != nil:
		return EntryKindSeverity
	default:
		return EntryKindUnknown
	}
}

func (entry Entry) IsSeverity() bool {
	return entry.Kind() == EntryKindSeverity
}

func (entry Entry) IsEvent() bool {
	return entry.Kind() == EntryKindEvent
}

// SeverityValue returns the severity of a severity entry and 0 otherwise.
func (entry Entry) SeverityValue() int {
	if entry.Severity == nil {
		return 0
	}
	return *entry.Severity
}

// DayKey is the leading ISO date of the stored timestamp, without any timezone
// normalisation.
func (entry Entry) DayKey() (string, bool) {
	return DayKeyOf(entry.Date)
}

func DayKeyOf(date string) (string, bool) {
	if len(date) < len("2006-01-02") {
		return "", false
	}
	return date[:len("2006-01-02")], true
}

var entryTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEntryTime parses the ISO-8601 forms the client produces. Values without
// a zone are read as UTC.
func ParseEntryTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range entryTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Validate rejects entries that cannot be stored: missing id or type, a date
// that is not an ISO timestamp, or a payload that is neither kind.
func (entry Entry) Validate() error {
	if strings.TrimSpace(entry.ID) == "" || strings.TrimSpace(entry.Type) == "" {
		return ErrInvalidEntry
	}
	if _, ok := ParseEntryTime(entry.Date); !ok {
		return ErrInvalidEntry
	}
	switch entry.Kind() {
	case EntryKindSeverity:
		if !ValidSeverity(*entry.Severity) {
			return ErrInvalidSeverity
		}
	case EntryKindEvent:
		if entry.Severity != nil {
			return ErrInvalidEntry
		}
	default:
		return ErrInvalidEntry
	}
	if entry.Author != "" && entry.Author != AuthorPatient && entry.Author != AuthorPartner {
		return ErrInvalidEntry
	}
	return nil
}

func ValidSeverity(severity int) bool {
	return severity >= MinSeverity && severity <= MaxSeverity
}

func SideEffectTypes() []string {
	return []string{
		EntryTypeHotFlashes,
		EntryTypeJointPain,
		EntryTypeMusclePain,
		EntryTypeFatigue,
		EntryTypeMoodChanges,
		EntryTypeNausea,
		EntryTypeHeadaches,
		EntryTypeWeightChanges,
		EntryTypeSleepProblems,
		EntryTypeOther,
	}
}

func PartnerObservationTypes() []string {
	return []string{
		"noticed_mood_change",
		"seemed_tired",
		"mentioned_pain",
		"sleep_issues_observed",
		"appetite_change",
		"low_energy",
		"seemed_uncomfortable",
		EntryTypeOther,
	}
}

func MenstrualEventTypes() []string {
	return []string{EntryTypePeriodStarted, EntryTypePeriodEnded, EntryTypeSpotting}
}

func IsMenstrualType(entryType string) bool {
	switch entryType {
	case EntryTypePeriodStarted, EntryTypePeriodEnded, EntryTypeSpotting:
		return true
	default:
		return false
	}
}
