package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

const DefaultTopSymptoms = 3

type SymptomRanking struct {
	Type        string  `json:"type"`
	AvgSeverity float64 `json:"avgSeverity"`
	Count       int     `json:"count"`
}

// TopSymptomsByAvgSeverity ranks severity entries by mean severity, highest
// first, keeping first-seen order on ties. Menstrual and weight types never
// rank. topN <= 0 means DefaultTopSymptoms.
func TopSymptomsByAvgSeverity(entries []models.Entry, window Window, topN int, now time.Time) []SymptomRanking {
	if topN <= 0 {
		topN = DefaultTopSymptoms
	}

	byType := newOrderedGroups()
	for _, entry := range severityEntries(window.Apply(entries, now)) {
		if excludedFromRanking(entry.Type) {
			continue
		}
		byType.add(entry.Type, entry.SeverityValue())
	}

	rankings := make([]SymptomRanking, 0, len(byType.keys))
	for _, entryType := range byType.keys {
		average, _ := byType.mean(entryType)
		rankings = append(rankings, SymptomRanking{
			Type:        entryType,
			AvgSeverity: average,
			Count:       len(byType.values[entryType]),
		})
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].AvgSeverity > rankings[j].AvgSeverity
	})

	if len(rankings) > topN {
		rankings = rankings[:topN]
	}
	return rankings
}

func excludedFromRanking(entryType string) bool {
	return models.IsMenstrualType(entryType) || entryType == models.EntryTypeWeightChanges
}
