package services

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/security"
)

const (
	ShareLinkValidity  = 7 * 24 * time.Hour
	doctorSummaryDays  = 90
	doctorTopSymptomsN = 10
)

var (
	ErrShareTokenMissing     = errors.New("missing share token")
	ErrShareLinkNotFound     = errors.New("invalid or expired share link")
	ErrShareLinkRevoked      = errors.New("share link has been revoked")
	ErrShareLinkExpired      = errors.New("share link has expired")
	ErrCreateShareLinkFailed = errors.New("create share link failed")
	ErrDoctorSummaryFailed   = errors.New("failed to fetch entries")
)

type ShareLinkRepository interface {
	Create(link *models.ShareLink) error
	FindByTokenHash(tokenHash string) (models.ShareLink, bool, error)
	TouchAccessed(linkID string, accessedAt time.Time) error
	RevokeByHousehold(householdID string) (int64, error)
}

type ShareEntryRepository interface {
	ListSince(householdID string, sinceDay string) ([]models.EntryRecord, error)
}

type ShareService struct {
	links   ShareLinkRepository
	entries ShareEntryRepository
	baseURL string
	now     func() time.Time
}

type DateRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type SymptomCount struct {
	Symptom string `json:"symptom"`
	Count   int    `json:"count"`
}

// SharedEntry is the reduced entry view a clinician sees. Notes are withheld.
type SharedEntry struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	Author   string `json:"author"`
	Severity *int   `json:"severity,omitempty"`
	Message  string `json:"message,omitempty"`
}

type DoctorSummary struct {
	DateRange      DateRange      `json:"date_range"`
	TotalEntries   int            `json:"total_entries"`
	SeverityCounts map[string]int `json:"severity_counts"`
	TopSymptoms    []SymptomCount `json:"top_symptoms"`
	Entries        []SharedEntry  `json:"entries"`
	GeneratedAt    string         `json:"generated_at"`
}

func NewShareService(links ShareLinkRepository, entries ShareEntryRepository, baseURL string, now func() time.Time) *ShareService {
	if now == nil {
		now = time.Now
	}
	return &ShareService{links: links, entries: entries, baseURL: baseURL, now: now}
}

// CreateShareLink stores the digest of a fresh token and returns the URL that
// carries the raw token.
func (service *ShareService) CreateShareLink(session *Session) (string, error) {
	if session == nil || session.HouseholdID == "" {
		return "", ErrSessionMissing
	}

	token, err := security.NewShareToken()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreateShareLinkFailed, err)
	}
	now := service.now().UTC()
	link := models.ShareLink{
		HouseholdID: session.HouseholdID,
		TokenHash:   security.HashToken(token),
		ExpiresAt:   now.Add(ShareLinkValidity),
		CreatedAt:   now,
	}
	if err := service.links.Create(&link); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreateShareLinkFailed, err)
	}
	return ShareURL(service.baseURL, token), nil
}

func ShareURL(baseURL string, token string) string {
	return baseURL + "?share=" + url.QueryEscape(token)
}

// DoctorSummary builds the read-only report for the household behind token
// over the last ninety days.
func (service *ShareService) DoctorSummary(token string) (DoctorSummary, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return DoctorSummary{}, ErrShareTokenMissing
	}

	link, found, err := service.links.FindByTokenHash(security.HashToken(token))
	if err != nil {
		return DoctorSummary{}, fmt.Errorf("%w: %v", ErrDoctorSummaryFailed, err)
	}
	if !found {
		return DoctorSummary{}, ErrShareLinkNotFound
	}
	if link.Revoked {
		return DoctorSummary{}, ErrShareLinkRevoked
	}
	now := service.now().UTC()
	if link.ExpiresAt.Before(now) {
		return DoctorSummary{}, ErrShareLinkExpired
	}

	if err := service.links.TouchAccessed(link.ID, now); err != nil {
		log.Printf("share link %s: update last access: %v", link.ID, err)
	}

	since := now.AddDate(0, 0, -doctorSummaryDays).Format("2006-01-02")
	records, err := service.entries.ListSince(link.HouseholdID, since)
	if err != nil {
		return DoctorSummary{}, fmt.Errorf("%w: %v", ErrDoctorSummaryFailed, err)
	}
	return buildDoctorSummary(records, now), nil
}

func buildDoctorSummary(records []models.EntryRecord, now time.Time) DoctorSummary {
	summary := DoctorSummary{
		SeverityCounts: make(map[string]int),
		TopSymptoms:    []SymptomCount{},
		Entries:        make([]SharedEntry, 0, len(records)),
		TotalEntries:   len(records),
		GeneratedAt:    now.Format(entryDateLayout),
	}

	var minDay, maxDay string
	symptomOrder := make([]string, 0)
	symptomCounts := make(map[string]int)
	for _, record := range records {
		day := record.OccurredAt
		if minDay == "" || day < minDay {
			minDay = day
		}
		if maxDay == "" || day > maxDay {
			maxDay = day
		}

		payload := record.Payload
		if payload.Severity != nil {
			summary.SeverityCounts["severity_"+strconv.Itoa(*payload.Severity)]++
		}
		if payload.Type != "" {
			if _, ok := symptomCounts[payload.Type]; !ok {
				symptomOrder = append(symptomOrder, payload.Type)
			}
			symptomCounts[payload.Type]++
		}

		shared := SharedEntry{
			Date:     payload.Date,
			Type:     payload.Type,
			Author:   payload.Author,
			Severity: payload.Severity,
		}
		if shared.Date == "" {
			shared.Date = day
		}
		if shared.Author == "" {
			shared.Author = models.AuthorPatient
		}
		if payload.Type == models.EntryTypeExercise || payload.Type == models.EntryTypeDayNote {
			shared.Message = payload.Message
		}
		summary.Entries = append(summary.Entries, shared)
	}

	if minDay != "" {
		summary.DateRange = DateRange{Start: &minDay, End: &maxDay}
	}

	for _, symptom := range symptomOrder {
		summary.TopSymptoms = append(summary.TopSymptoms, SymptomCount{Symptom: symptom, Count: symptomCounts[symptom]})
	}
	sort.SliceStable(summary.TopSymptoms, func(i, j int) bool {
		return summary.TopSymptoms[i].Count > summary.TopSymptoms[j].Count
	})
	if len(summary.TopSymptoms) > doctorTopSymptomsN {
		summary.TopSymptoms = summary.TopSymptoms[:doctorTopSymptomsN]
	}
	return summary
}

// RevokeShareLinks revokes every live link of a household.
func (service *ShareService) RevokeShareLinks(householdID string) (int64, error) {
	return service.links.RevokeByHousehold(householdID)
}
