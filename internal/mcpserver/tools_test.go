package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/services"
)

var toolNow = time.Date(2026, time.June, 30, 12, 0, 0, 0, time.UTC)

type stubHouseholds struct {
	households []models.Household
}

func (stub stubHouseholds) ListAll() ([]models.Household, error) {
	return stub.households, nil
}

func (stub stubHouseholds) FindByID(householdID string) (models.Household, bool, error) {
	for _, household := range stub.households {
		if household.ID == householdID {
			return household, true, nil
		}
	}
	return models.Household{}, false, nil
}

type stubEntries map[string][]models.EntryRecord

func (stub stubEntries) ListByHousehold(householdID string) ([]models.EntryRecord, error) {
	return stub[householdID], nil
}

func (stub stubEntries) CountByHousehold(householdID string) (int64, error) {
	return int64(len(stub[householdID])), nil
}

type stubUsers map[string]string

func (stub stubUsers) EmailsByIDs(userIDs []string) (map[string]string, error) {
	emails := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if email, ok := stub[id]; ok {
			emails[id] = email
		}
	}
	return emails, nil
}

func record(entry models.Entry) models.EntryRecord {
	day, _ := entry.DayKey()
	return models.EntryRecord{ID: "rec-" + entry.ID, EntryID: entry.ID, OccurredAt: day, Payload: entry}
}

func severityEntry(id string, entryType string, severity int, date string) models.Entry {
	return models.Entry{ID: id, Type: entryType, Severity: &severity, Date: date}
}

func newTestServer() *ReportServer {
	partner := severityEntry("p1", "seemed_tired", 5, "2026-06-29T20:00:00.000Z")
	partner.Author = models.AuthorPartner

	return NewReportServer("test",
		stubHouseholds{households: []models.Household{{ID: "hh-1", OwnerUserID: "u-1", PatientName: "Dana"}}},
		stubEntries{"hh-1": {
			record(severityEntry("e1", models.EntryTypeHotFlashes, 2, "2026-06-28T08:00:00.000Z")),
			record(severityEntry("e2", models.EntryTypeJointPain, 4, "2026-06-29T08:00:00.000Z")),
			record(severityEntry("e3", models.EntryTypeHotFlashes, 4, "2026-06-29T09:00:00.000Z")),
			record(partner),
		}},
		stubUsers{"u-1": "dana@example.com"},
		func() time.Time { return toolNow },
	)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), arguments map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = arguments

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("tool returned protocol error: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("tool returned no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text, result.IsError
}

func TestListHouseholds(t *testing.T) {
	server := newTestServer()

	text, isError := callTool(t, server.listHouseholds, nil)
	if isError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	listings := []householdListing{}
	if err := json.Unmarshal([]byte(text), &listings); err != nil {
		t.Fatalf("decode listings: %v", err)
	}
	if len(listings) != 1 || listings[0].OwnerEmail != "dana@example.com" || listings[0].Entries != 4 {
		t.Fatalf("unexpected listings: %+v", listings)
	}
}

func TestHouseholdSummaryExcludesPartnerObservations(t *testing.T) {
	server := newTestServer()

	text, isError := callTool(t, server.householdSummary, map[string]interface{}{"household_id": "hh-1", "window": "7"})
	if isError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	if !strings.Contains(text, "HOT FLASHES") || strings.Contains(text, "SEEMED TIRED") {
		t.Fatalf("unexpected summary:\n%s", text)
	}
}

func TestTopSymptomsTool(t *testing.T) {
	server := newTestServer()

	text, isError := callTool(t, server.topSymptoms, map[string]interface{}{"household_id": "hh-1", "top": float64(1)})
	if isError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	ranking := []services.SymptomRanking{}
	if err := json.Unmarshal([]byte(text), &ranking); err != nil {
		t.Fatalf("decode ranking: %v", err)
	}
	if len(ranking) != 1 || ranking[0].Type != models.EntryTypeJointPain {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}

	if _, isError := callTool(t, server.topSymptoms, map[string]interface{}{"household_id": "hh-1", "top": float64(0)}); !isError {
		t.Fatal("top=0 should be a tool error")
	}
}

func TestSymptomTrendTool(t *testing.T) {
	server := newTestServer()

	text, isError := callTool(t, server.symptomTrend, map[string]interface{}{
		"household_id": "hh-1",
		"types":        "hot_flashes",
	})
	if isError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	trend := services.TrendData{}
	if err := json.Unmarshal([]byte(text), &trend); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	series := trend.SeriesByType[models.EntryTypeHotFlashes]
	if len(trend.RawDates) != 2 || len(series) != 2 || series[1] == nil || *series[1] != 4 {
		t.Fatalf("unexpected trend: %+v", trend)
	}
}

func TestToolArgumentErrors(t *testing.T) {
	server := newTestServer()

	cases := []map[string]interface{}{
		{},
		{"household_id": "missing"},
		{"household_id": "hh-1", "window": "fortnight"},
	}
	for _, arguments := range cases {
		if text, isError := callTool(t, server.householdSummary, arguments); !isError {
			t.Fatalf("expected tool error for %v, got %s", arguments, text)
		}
	}
	if _, isError := callTool(t, server.symptomTrend, map[string]interface{}{"household_id": "hh-1", "types": " , "}); !isError {
		t.Fatal("empty types should be a tool error")
	}
}
