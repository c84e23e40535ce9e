package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

const (
	NoSideEffectsSummary = "No side effects recorded."
	summaryTitle         = "=== Tamoxifen Side Effect Summary ==="
	reportDateLayout     = "1/2/2006"
)

// FormatSummary renders the plain-text doctor summary dated today.
func FormatSummary(entries []models.Entry) string {
	return FormatSummaryAt(entries, time.Now())
}

// FormatSummaryAt renders the summary as generated at now. Malformed entries
// are ignored; an empty input yields NoSideEffectsSummary.
func FormatSummaryAt(entries []models.Entry, now time.Time) string {
	entries = AllTime.Apply(entries, now)
	if len(entries) == 0 {
		return NoSideEffectsSummary
	}

	severities := severityEntries(entries)
	events := eventEntries(entries)

	byType := newOrderedGroups()
	for _, entry := range severities {
		byType.add(entry.Type, entry.SeverityValue())
	}

	lines := []string{summaryTitle, ""}
	if len(severities) > 0 {
		lines = append(lines, keyFindings(severities, byType)...)
	}

	lines = append(lines, "--- DETAILED BREAKDOWN ---", "")
	for _, entryType := range byType.keys {
		average, _ := byType.mean(entryType)
		lines = append(lines,
			strings.ToUpper(typeLabel(entryType)),
			fmt.Sprintf("  Occurrences: %d", len(byType.values[entryType])),
			fmt.Sprintf("  Avg Severity: %.1f/5", average),
			"",
		)
	}

	menstrual := make([]models.Entry, 0)
	weight := make([]models.Entry, 0)
	for _, entry := range events {
		switch {
		case models.IsMenstrualType(entry.Type):
			menstrual = append(menstrual, entry)
		case entry.Type == models.EntryTypeWeightChanges && entry.Notes != "":
			weight = append(weight, entry)
		}
	}

	if len(menstrual) > 0 {
		lines = append(lines, "--- Menstrual / Bleeding Events ---")
		for _, entry := range chronological(menstrual) {
			day, _ := entry.DayKey()
			line := fmt.Sprintf("  %s: %s", day, titleLabel(entry.Type))
			if entry.Notes != "" {
				line += " - " + entry.Notes
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	if len(weight) > 0 {
		lines = append(lines, "--- Weight Tracking ---")
		for _, entry := range chronological(weight) {
			day, _ := entry.DayKey()
			lines = append(lines, fmt.Sprintf("  %s: %s", day, entry.Notes))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		fmt.Sprintf("Total entries: %d", len(entries)),
		fmt.Sprintf("Report generated: %s", now.Format(reportDateLayout)),
	)
	return strings.Join(lines, "\n")
}

func keyFindings(severities []models.Entry, byType *orderedGroups) []string {
	lines := []string{"--- KEY FINDINGS ---", ""}

	mostFrequentType, maxCount := "", 0
	highestType, highestAverage := "", 0.0
	for _, entryType := range byType.keys {
		if count := len(byType.values[entryType]); count > maxCount {
			mostFrequentType, maxCount = entryType, count
		}
		if average, _ := byType.mean(entryType); average > highestAverage {
			highestType, highestAverage = entryType, average
		}
	}

	byDay := newOrderedGroups()
	for _, entry := range severities {
		day, _ := entry.DayKey()
		byDay.add(day, entry.SeverityValue())
	}
	worstDay, worstAverage := "", 0.0
	for _, day := range byDay.keys {
		if average, _ := byDay.mean(day); average > worstAverage {
			worstDay, worstAverage = day, average
		}
	}

	if mostFrequentType != "" {
		lines = append(lines, fmt.Sprintf("Most frequent symptom: %s (%d occurrences)", typeLabel(mostFrequentType), maxCount))
	}
	if highestType != "" {
		lines = append(lines, fmt.Sprintf("Highest severity symptom: %s (avg %.1f/5)", typeLabel(highestType), highestAverage))
	}
	if worstDay != "" {
		lines = append(lines, fmt.Sprintf("Worst day recorded: %s (avg severity %.1f/5)", worstDay, worstAverage))
	}

	first, last := reportingPeriod(severities)
	lines = append(lines, fmt.Sprintf("Reporting period: %s to %s", first, last), "")
	return lines
}

// reportingPeriod formats the earliest and latest entry dates. Entries whose
// timestamp cannot be parsed fall back to their day key.
func reportingPeriod(entries []models.Entry) (string, string) {
	sorted := chronological(entries)
	return reportDate(sorted[0]), reportDate(sorted[len(sorted)-1])
}

func reportDate(entry models.Entry) string {
	if occurred, ok := ParseEntryTime(entry.Date); ok {
		return occurred.Format(reportDateLayout)
	}
	day, _ := entry.DayKey()
	return day
}

// chronological returns a copy of entries sorted by timestamp, keeping input
// order for equal or unparseable dates.
func chronological(entries []models.Entry) []models.Entry {
	sorted := append([]models.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		left, leftOK := ParseEntryTime(sorted[i].Date)
		right, rightOK := ParseEntryTime(sorted[j].Date)
		if !leftOK || !rightOK {
			return false
		}
		return left.Before(right)
	})
	return sorted
}
