package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/sidetrack/internal/db"
	"github.com/terraincognita07/sidetrack/internal/models"
	"gorm.io/gorm"
)

var cliNow = time.Date(2026, time.June, 30, 12, 0, 0, 0, time.UTC)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "sidetrack-cli-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func TestRunRevokeSharesCommand(t *testing.T) {
	database := openTestDatabase(t)
	repositories := db.NewRepositories(database)

	owner, err := repositories.Users.FindOrCreateByEmail("owner@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	household := models.Household{OwnerUserID: owner.ID}
	if err := repositories.Households.Create(&household); err != nil {
		t.Fatalf("create household: %v", err)
	}
	for _, hash := range []string{"hash-a", "hash-b"} {
		link := models.ShareLink{HouseholdID: household.ID, TokenHash: hash, ExpiresAt: cliNow.Add(time.Hour), CreatedAt: cliNow}
		if err := repositories.ShareLinks.Create(&link); err != nil {
			t.Fatalf("create share link: %v", err)
		}
	}

	var out bytes.Buffer
	if err := RunRevokeSharesCommand(database, " Owner@Example.com ", &out); err != nil {
		t.Fatalf("RunRevokeSharesCommand() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Revoked 2 share link(s)") {
		t.Fatalf("unexpected output %q", out.String())
	}

	link, found, err := repositories.ShareLinks.FindByTokenHash("hash-a")
	if err != nil || !found || !link.Revoked {
		t.Fatalf("expected revoked link, got %+v found=%v err=%v", link, found, err)
	}
}

func TestRunRevokeSharesCommandErrors(t *testing.T) {
	database := openTestDatabase(t)

	if err := RunRevokeSharesCommand(database, "not-an-email", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for invalid email")
	}
	if err := RunRevokeSharesCommand(database, "ghost@example.com", &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRunSummaryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	export := `[
		{"id":"1","type":"hot_flashes","severity":4,"notes":"","date":"2026-06-28T08:00:00.000Z"},
		{"id":"2","type":"fatigue","severity":2,"notes":"","date":"2026-06-29T08:00:00.000Z"},
		{"id":"3","type":"seemed_tired","severity":5,"notes":"","date":"2026-06-29T08:00:00.000Z","author":"partner"},
		{"id":"4","type":"nausea","severity":5,"notes":"","date":"2025-01-01T08:00:00.000Z"}
	]`
	if err := os.WriteFile(path, []byte(export), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}

	var out bytes.Buffer
	if err := RunSummaryCommand(path, "30", cliNow, &out); err != nil {
		t.Fatalf("RunSummaryCommand() unexpected error: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "HOT FLASHES") || !strings.Contains(text, "1. hot_flashes") {
		t.Fatalf("unexpected output:\n%s", text)
	}
	if strings.Contains(text, "NAUSEA") || strings.Contains(text, "seemed_tired") {
		t.Fatalf("old and partner entries should be excluded:\n%s", text)
	}
	if !strings.Contains(text, "last 30 days") {
		t.Fatalf("expected window description:\n%s", text)
	}
}

func TestRunSummaryCommandWrappedExportAndErrors(t *testing.T) {
	dir := t.TempDir()
	wrapped := filepath.Join(dir, "wrapped.json")
	if err := os.WriteFile(wrapped, []byte(`{"entries": []}`), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}

	var out bytes.Buffer
	if err := RunSummaryCommand(wrapped, "all", cliNow, &out); err != nil {
		t.Fatalf("RunSummaryCommand() unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "No side effects recorded." {
		t.Fatalf("expected placeholder, got %q", out.String())
	}

	if err := RunSummaryCommand(wrapped, "weekly", cliNow, &out); err == nil {
		t.Fatal("expected invalid window error")
	}
	if err := RunSummaryCommand(filepath.Join(dir, "missing.json"), "", cliNow, &out); err == nil {
		t.Fatal("expected missing file error")
	}
}
