package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

var ErrInvalidWindow = errors.New("invalid window")

// Window selects either every entry or the trailing Days days before now.
type Window struct {
	All  bool
	Days int
}

var AllTime = Window{All: true}

func LastDays(days int) Window {
	return Window{Days: days}
}

// ParseWindow accepts "all" (or an empty value) and non-negative day counts.
func ParseWindow(raw string) (Window, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return AllTime, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return Window{}, ErrInvalidWindow
	}
	return LastDays(days), nil
}

func (window Window) String() string {
	if window.All {
		return "all"
	}
	return strconv.Itoa(window.Days)
}

// Start is the inclusive lower bound of the window, counted in calendar days
// in now's location.
func (window Window) Start(now time.Time) (time.Time, bool) {
	if window.All {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -window.Days), true
}

// Apply drops malformed entries and, for a bounded window, entries dated
// before its start.
func (window Window) Apply(entries []models.Entry, now time.Time) []models.Entry {
	start, bounded := window.Start(now)
	filtered := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		if !wellFormed(entry) {
			continue
		}
		if bounded {
			occurred, ok := ParseEntryTime(entry.Date)
			if !ok || occurred.Before(start) {
				continue
			}
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

// FilterByDateRange keeps entries whose timestamp lies within [start, end].
func FilterByDateRange(entries []models.Entry, start time.Time, end time.Time) []models.Entry {
	filtered := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		occurred, ok := ParseEntryTime(entry.Date)
		if !ok || occurred.Before(start) || occurred.After(end) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func FilterByType(entries []models.Entry, entryType string) []models.Entry {
	filtered := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Type == entryType {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// FilterByAuthor matches the author field exactly, so entries without an
// author never match.
func FilterByAuthor(entries []models.Entry, author string) []models.Entry {
	filtered := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Author == author {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// SplitByAuthor separates partner observations from the patient's own log.
// Entries without an author belong to the patient.
func SplitByAuthor(entries []models.Entry) (patient []models.Entry, partner []models.Entry) {
	patient = make([]models.Entry, 0, len(entries))
	partner = make([]models.Entry, 0)
	for _, entry := range entries {
		if entry.Author == models.AuthorPartner {
			partner = append(partner, entry)
			continue
		}
		patient = append(patient, entry)
	}
	return patient, partner
}

// ParseEntryTime parses the ISO-8601 forms the client produces. Values without
// a zone are read as UTC.
func ParseEntryTime(raw string) (time.Time, bool) {
	return models.ParseEntryTime(raw)
}

func wellFormed(entry models.Entry) bool {
	if strings.TrimSpace(entry.Type) == "" {
		return false
	}
	_, ok := entry.DayKey()
	return ok
}

func severityEntries(entries []models.Entry) []models.Entry {
	filtered := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsSeverity() {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func eventEntries(entries []models.Entry) []models.Entry {
	filtered := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsEvent() {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// orderedGroups accumulates severities under keys while remembering the order
// in which keys were first seen.
type orderedGroups struct {
	keys   []string
	values map[string][]int
}

func newOrderedGroups() *orderedGroups {
	return &orderedGroups{values: make(map[string][]int)}
}

func (groups *orderedGroups) touch(key string) {
	if _, ok := groups.values[key]; !ok {
		groups.keys = append(groups.keys, key)
		groups.values[key] = []int{}
	}
}

func (groups *orderedGroups) add(key string, severity int) {
	groups.touch(key)
	groups.values[key] = append(groups.values[key], severity)
}

func (groups *orderedGroups) mean(key string) (float64, bool) {
	return mean(groups.values[key])
}

func mean(values []int) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	total := 0
	for _, value := range values {
		total += value
	}
	return float64(total) / float64(len(values)), true
}

func meanPtr(values []int) *float64 {
	value, ok := mean(values)
	if !ok {
		return nil
	}
	return &value
}

// dayLabel renders a YYYY-MM-DD key as M/D without any timezone shift.
func dayLabel(day string) string {
	parsed, err := time.Parse("2006-01-02", day)
	if err != nil {
		return day
	}
	return strconv.Itoa(int(parsed.Month())) + "/" + strconv.Itoa(parsed.Day())
}

func typeLabel(entryType string) string {
	return strings.ReplaceAll(entryType, "_", " ")
}

func titleLabel(entryType string) string {
	words := strings.Fields(typeLabel(entryType))
	for index, word := range words {
		words[index] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
