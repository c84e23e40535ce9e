package db

import (
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "sidetrack-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func TestLoadEmbeddedMigrationsFiltersByDialect(t *testing.T) {
	for _, dialect := range []string{DialectSQLite, DialectPostgres} {
		migrations, err := loadEmbeddedMigrations(dialect)
		if err != nil {
			t.Fatalf("loadEmbeddedMigrations(%q) unexpected error: %v", dialect, err)
		}
		if len(migrations) < 2 {
			t.Fatalf("loadEmbeddedMigrations(%q) returned %d migrations", dialect, len(migrations))
		}
		for _, migration := range migrations {
			other := DialectPostgres
			if dialect == DialectPostgres {
				other = DialectSQLite
			}
			if strings.HasSuffix(migration.Name, "."+other+".sql") {
				t.Fatalf("dialect %q loaded foreign migration %s", dialect, migration.Name)
			}
		}
		for index := 1; index < len(migrations); index++ {
			if migrations[index-1].Order > migrations[index].Order {
				t.Fatalf("migrations out of order: %s before %s", migrations[index-1].Name, migrations[index].Name)
			}
		}
	}
}

func TestOpenSQLiteAppliesEmbeddedMigrations(t *testing.T) {
	database := openTestDatabase(t)

	for _, table := range []string{"users", "households", "household_members", "household_invites", "entries", "share_links", "login_codes", "cached_responses"} {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	migrations, err := loadEmbeddedMigrations(DialectSQLite)
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	var applied int64
	if err := database.Raw(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied).Error; err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if applied != int64(len(migrations)) {
		t.Fatalf("expected %d applied migrations, got %d", len(migrations), applied)
	}
}

func TestOpenSQLiteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sidetrack-reopen.db")
	for attempt := 0; attempt < 2; attempt++ {
		database, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("open attempt %d: %v", attempt, err)
		}
		sqlDB, err := database.DB()
		if err != nil {
			t.Fatalf("sql db: %v", err)
		}
		_ = sqlDB.Close()
	}
}

func TestSplitSQLStatementsDropsBlankParts(t *testing.T) {
	statements := splitSQLStatements("CREATE TABLE a (x TEXT);\n\n;  ;\nCREATE TABLE b (y TEXT);\n")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %#v", len(statements), statements)
	}
	if statements[1] != "CREATE TABLE b (y TEXT)" {
		t.Fatalf("unexpected second statement %q", statements[1])
	}
}

func TestShouldSkipStatementForExistingColumn(t *testing.T) {
	database := openTestDatabase(t)

	skip, err := shouldSkipStatement(database, DialectSQLite, "ALTER TABLE entries ADD COLUMN payload TEXT")
	if err != nil {
		t.Fatalf("shouldSkipStatement() unexpected error: %v", err)
	}
	if !skip {
		t.Fatal("expected existing column to be skipped")
	}

	skip, err = shouldSkipStatement(database, DialectSQLite, "ALTER TABLE entries ADD COLUMN archived BOOLEAN")
	if err != nil {
		t.Fatalf("shouldSkipStatement() unexpected error: %v", err)
	}
	if skip {
		t.Fatal("expected missing column not to be skipped")
	}
}

func TestApplyMigrationSkipsColumnsThatAlreadyExist(t *testing.T) {
	database := openTestDatabase(t)

	migration := embeddedMigration{
		Version: "9001",
		Order:   9001,
		Name:    "9001_entries_archived.sqlite.sql",
		SQL:     "ALTER TABLE entries ADD COLUMN payload TEXT;\nALTER TABLE entries ADD COLUMN archived BOOLEAN NOT NULL DEFAULT 0;",
	}
	if err := applyMigration(database, DialectSQLite, migration); err != nil {
		t.Fatalf("applyMigration() unexpected error: %v", err)
	}
	if !database.Migrator().HasColumn("entries", "archived") {
		t.Fatal("expected new column to be added")
	}

	var recorded int64
	if err := database.Raw(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, "9001").Scan(&recorded).Error; err != nil {
		t.Fatalf("count recorded migration: %v", err)
	}
	if recorded != 1 {
		t.Fatalf("expected migration to be recorded once, got %d", recorded)
	}
}

func TestShouldSkipStatementLeavesPostgresToIfNotExists(t *testing.T) {
	database := openTestDatabase(t)

	skip, err := shouldSkipStatement(database, DialectPostgres, "ALTER TABLE entries ADD COLUMN IF NOT EXISTS payload JSONB")
	if err != nil || skip {
		t.Fatalf("shouldSkipStatement() = %v, %v; postgres statements always run", skip, err)
	}
}

func TestOpenSQLiteAppliesConnectionPragmas(t *testing.T) {
	database := openTestDatabase(t)

	var journalMode string
	if err := database.Raw(`PRAGMA journal_mode`).Scan(&journalMode).Error; err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if !strings.EqualFold(journalMode, "wal") {
		t.Fatalf("journal_mode = %q, want wal", journalMode)
	}

	var foreignKeys int
	if err := database.Raw(`PRAGMA foreign_keys`).Scan(&foreignKeys).Error; err != nil {
		t.Fatalf("read foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("foreign_keys = %d, want 1", foreignKeys)
	}
}
