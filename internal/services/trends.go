package services

import (
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

type TrendData struct {
	RawDates       []string              `json:"rawDates"`
	Labels         []string              `json:"labels"`
	SeriesByType   map[string][]*float64 `json:"seriesByType"`
	MenstrualDates []string              `json:"menstrualDates"`
}

// BuildSymptomTrendData computes, for each requested type, the daily mean
// severity over a day axis shared by every severity entry in window. Days
// where a type has no entries hold nil.
func BuildSymptomTrendData(entries []models.Entry, window Window, types []string, now time.Time) TrendData {
	filtered := window.Apply(entries, now)
	severities := severityEntries(filtered)

	byTypeAndDay := make(map[string]map[string][]int, len(types))
	for _, entryType := range types {
		byTypeAndDay[entryType] = make(map[string][]int)
	}
	axis := make([]string, 0)
	for _, entry := range severities {
		day, _ := entry.DayKey()
		axis = append(axis, day)
		if days, ok := byTypeAndDay[entry.Type]; ok {
			days[day] = append(days[day], entry.SeverityValue())
		}
	}
	axis = sortedUnion(axis, nil)

	series := make(map[string][]*float64, len(types))
	for _, entryType := range types {
		points := make([]*float64, len(axis))
		for index, day := range axis {
			points[index] = meanPtr(byTypeAndDay[entryType][day])
		}
		series[entryType] = points
	}

	labels := make([]string, len(axis))
	for index, day := range axis {
		labels[index] = dayLabel(day)
	}

	return TrendData{
		RawDates:       axis,
		Labels:         labels,
		SeriesByType:   series,
		MenstrualDates: menstrualDays(eventEntries(filtered)),
	}
}
