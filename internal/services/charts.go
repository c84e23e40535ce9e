package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

type BarData struct {
	Labels      []string `json:"labels"`
	Types       []string `json:"types"`
	PatientData []int    `json:"patientData"`
	PartnerData []int    `json:"partnerData"`
}

// LineData holds one point per day; nil marks a day without entries for that
// party and encodes as JSON null.
type LineData struct {
	Labels      []string   `json:"labels"`
	RawDates    []string   `json:"rawDates"`
	PatientData []*float64 `json:"patientData"`
	PartnerData []*float64 `json:"partnerData"`
}

type ChartData struct {
	BarData        BarData  `json:"barData"`
	LineData       LineData `json:"lineData"`
	TotalPatient   int      `json:"totalPatient"`
	TotalPartner   int      `json:"totalPartner"`
	MenstrualDates []string `json:"menstrualDates"`
}

// BuildChartData compares patient entries with partner observations inside
// window. Bar counts cover patient severity entries and every partner
// observation; menstrual types are left out of the bars.
func BuildChartData(patientEntries []models.Entry, partnerObservations []models.Entry, window Window, now time.Time) ChartData {
	patient := window.Apply(patientEntries, now)
	partner := window.Apply(partnerObservations, now)
	patientSeverities := severityEntries(patient)

	patientCounts := make(map[string]int)
	partnerCounts := make(map[string]int)
	typeSet := make(map[string]struct{})
	for _, entry := range patientSeverities {
		patientCounts[entry.Type]++
		typeSet[entry.Type] = struct{}{}
	}
	for _, entry := range partner {
		partnerCounts[entry.Type]++
		typeSet[entry.Type] = struct{}{}
	}

	types := make([]string, 0, len(typeSet))
	for entryType := range typeSet {
		if models.IsMenstrualType(entryType) {
			continue
		}
		types = append(types, entryType)
	}
	sort.Strings(types)

	bar := BarData{
		Labels:      make([]string, len(types)),
		Types:       types,
		PatientData: make([]int, len(types)),
		PartnerData: make([]int, len(types)),
	}
	for index, entryType := range types {
		bar.Labels[index] = typeLabel(entryType)
		bar.PatientData[index] = patientCounts[entryType]
		bar.PartnerData[index] = partnerCounts[entryType]
	}

	patientByDay := newOrderedGroups()
	for _, entry := range patientSeverities {
		day, _ := entry.DayKey()
		patientByDay.add(day, entry.SeverityValue())
	}
	partnerByDay := newOrderedGroups()
	for _, entry := range partner {
		day, _ := entry.DayKey()
		partnerByDay.touch(day)
		if entry.Severity != nil {
			partnerByDay.add(day, *entry.Severity)
		}
	}

	days := sortedUnion(patientByDay.keys, partnerByDay.keys)
	line := LineData{
		Labels:      make([]string, len(days)),
		RawDates:    days,
		PatientData: make([]*float64, len(days)),
		PartnerData: make([]*float64, len(days)),
	}
	for index, day := range days {
		line.Labels[index] = dayLabel(day)
		line.PatientData[index] = meanPtr(patientByDay.values[day])
		line.PartnerData[index] = meanPtr(partnerByDay.values[day])
	}

	return ChartData{
		BarData:        bar,
		LineData:       line,
		TotalPatient:   len(patient),
		TotalPartner:   len(partner),
		MenstrualDates: menstrualDays(eventEntries(patient)),
	}
}

// menstrualDays lists distinct days carrying a menstrual event in first-seen
// order.
func menstrualDays(events []models.Entry) []string {
	seen := make(map[string]struct{})
	days := make([]string, 0)
	for _, entry := range events {
		if !models.IsMenstrualType(entry.Type) {
			continue
		}
		day, _ := entry.DayKey()
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days
}

func sortedUnion(left []string, right []string) []string {
	set := make(map[string]struct{}, len(left)+len(right))
	for _, value := range left {
		set[value] = struct{}{}
	}
	for _, value := range right {
		set[value] = struct{}{}
	}
	union := make([]string, 0, len(set))
	for value := range set {
		union = append(union, value)
	}
	sort.Strings(union)
	return union
}
