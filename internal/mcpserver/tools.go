package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/services"
)

type householdListing struct {
	HouseholdID string `json:"household_id"`
	OwnerEmail  string `json:"owner_email"`
	PatientName string `json:"patient_name"`
	Entries     int64  `json:"entries"`
}

func (s *ReportServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_households",
		mcp.WithDescription("Lists every household with its owner email and entry count."),
	), s.listHouseholds)

	s.mcpServer.AddTool(mcp.NewTool("household_summary",
		mcp.WithDescription("Returns the plain-text side effect summary for a household's patient entries."),
		mcp.WithString("household_id", mcp.Required(), mcp.Description("Household to summarise.")),
		mcp.WithString("window", mcp.Description("Number of days to include, or 'all'. Defaults to all.")),
	), s.householdSummary)

	s.mcpServer.AddTool(mcp.NewTool("top_symptoms",
		mcp.WithDescription("Ranks a household's symptoms by average severity."),
		mcp.WithString("household_id", mcp.Required(), mcp.Description("Household to rank.")),
		mcp.WithString("window", mcp.Description("Number of days to include, or 'all'. Defaults to all.")),
		mcp.WithNumber("top", mcp.Description("How many symptoms to return. Defaults to 3.")),
	), s.topSymptoms)

	s.mcpServer.AddTool(mcp.NewTool("symptom_trend",
		mcp.WithDescription("Returns daily mean severity per symptom type for a household."),
		mcp.WithString("household_id", mcp.Required(), mcp.Description("Household to chart.")),
		mcp.WithString("types", mcp.Required(), mcp.Description("Comma separated symptom types, e.g. hot_flashes,fatigue.")),
		mcp.WithString("window", mcp.Description("Number of days to include, or 'all'. Defaults to all.")),
	), s.symptomTrend)
}

func (s *ReportServer) listHouseholds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	households, err := s.households.ListAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list households: %v", err)), nil
	}

	ownerIDs := make([]string, 0, len(households))
	for _, household := range households {
		ownerIDs = append(ownerIDs, household.OwnerUserID)
	}
	emails, err := s.users.EmailsByIDs(ownerIDs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load owners: %v", err)), nil
	}

	listings := make([]householdListing, 0, len(households))
	for _, household := range households {
		count, err := s.entries.CountByHousehold(household.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to count entries: %v", err)), nil
		}
		listings = append(listings, householdListing{
			HouseholdID: household.ID,
			OwnerEmail:  emails[household.OwnerUserID],
			PatientName: household.PatientName,
			Entries:     count,
		})
	}
	return jsonResult(listings)
}

func (s *ReportServer) householdSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patient, window, problem := s.patientEntries(request)
	if problem != nil {
		return problem, nil
	}
	now := s.now()
	return mcp.NewToolResultText(services.FormatSummaryAt(window.Apply(patient, now), now)), nil
}

func (s *ReportServer) topSymptoms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patient, window, problem := s.patientEntries(request)
	if problem != nil {
		return problem, nil
	}

	topN := services.DefaultTopSymptoms
	if raw, ok := request.Params.Arguments["top"].(float64); ok {
		if raw < 1 {
			return mcp.NewToolResultError("'top' must be at least 1."), nil
		}
		topN = int(raw)
	}
	return jsonResult(services.TopSymptomsByAvgSeverity(patient, window, topN, s.now()))
}

func (s *ReportServer) symptomTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawTypes, _ := request.Params.Arguments["types"].(string)
	types := make([]string, 0)
	for _, part := range strings.Split(rawTypes, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			types = append(types, trimmed)
		}
	}
	if len(types) == 0 {
		return mcp.NewToolResultError("'types' parameter is required and must list at least one type."), nil
	}

	patient, window, problem := s.patientEntries(request)
	if problem != nil {
		return problem, nil
	}
	return jsonResult(services.BuildSymptomTrendData(patient, window, types, s.now()))
}

// patientEntries loads the household named in the request. A non-nil result
// is a tool error to return as is.
func (s *ReportServer) patientEntries(request mcp.CallToolRequest) ([]models.Entry, services.Window, *mcp.CallToolResult) {
	householdID, _ := request.Params.Arguments["household_id"].(string)
	householdID = strings.TrimSpace(householdID)
	if householdID == "" {
		return nil, services.Window{}, mcp.NewToolResultError("'household_id' parameter is required and must be a non-empty string.")
	}

	rawWindow, _ := request.Params.Arguments["window"].(string)
	window, err := services.ParseWindow(rawWindow)
	if err != nil {
		return nil, services.Window{}, mcp.NewToolResultError(fmt.Sprintf("Invalid window %q: use a day count or 'all'.", rawWindow))
	}

	if _, found, err := s.households.FindByID(householdID); err != nil {
		return nil, services.Window{}, mcp.NewToolResultError(fmt.Sprintf("Failed to load household: %v", err))
	} else if !found {
		return nil, services.Window{}, mcp.NewToolResultError(fmt.Sprintf("Household '%s' not found.", householdID))
	}

	records, err := s.entries.ListByHousehold(householdID)
	if err != nil {
		return nil, services.Window{}, mcp.NewToolResultError(fmt.Sprintf("Failed to load entries: %v", err))
	}
	entries := make([]models.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, record.Payload)
	}
	patient, _ := services.SplitByAuthor(entries)
	return patient, window, nil
}

func jsonResult(value any) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}
