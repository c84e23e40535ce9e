package mcpserver

import (
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/terraincognita07/sidetrack/internal/models"
)

const serverName = "sidetrack reports"

type HouseholdRepository interface {
	ListAll() ([]models.Household, error)
	FindByID(householdID string) (models.Household, bool, error)
}

type EntryRepository interface {
	ListByHousehold(householdID string) ([]models.EntryRecord, error)
	CountByHousehold(householdID string) (int64, error)
}

type UserRepository interface {
	EmailsByIDs(userIDs []string) (map[string]string, error)
}

// ReportServer exposes read-only household reports as MCP tools over stdio.
type ReportServer struct {
	mcpServer  *server.MCPServer
	households HouseholdRepository
	entries    EntryRepository
	users      UserRepository
	now        func() time.Time
}

func NewReportServer(version string, households HouseholdRepository, entries EntryRepository, users UserRepository, now func() time.Time) *ReportServer {
	if now == nil {
		now = time.Now
	}
	s := &ReportServer{
		mcpServer: server.NewMCPServer(
			serverName,
			version,
			server.WithLogging(),
			server.WithRecovery(),
		),
		households: households,
		entries:    entries,
		users:      users,
		now:        now,
	}
	s.registerTools()
	return s
}

// Start runs the stdio event loop until stdin closes.
func (s *ReportServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *ReportServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
