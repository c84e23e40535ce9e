package db

import (
	"testing"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

func TestLoginCodeRepositoryReplaceUnusedInvalidatesOlderCodes(t *testing.T) {
	repo := NewLoginCodeRepository(openTestDatabase(t))
	now := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

	first := models.LoginCode{Email: "a@example.com", CodeHash: "first", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now.Add(-time.Minute)}
	if err := repo.ReplaceUnused(&first); err != nil {
		t.Fatalf("store first code: %v", err)
	}
	second := models.LoginCode{Email: "a@example.com", CodeHash: "second", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now}
	if err := repo.ReplaceUnused(&second); err != nil {
		t.Fatalf("store second code: %v", err)
	}

	active, err := repo.ListActive("a@example.com", now)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("expected only the newest code to stay active, got %#v", active)
	}

	used, err := repo.MarkUsed(second.ID)
	if err != nil || !used {
		t.Fatalf("MarkUsed() = %v, %v", used, err)
	}
	used, err = repo.MarkUsed(second.ID)
	if err != nil || used {
		t.Fatalf("second MarkUsed() = %v, %v; want false, nil", used, err)
	}

	deleted, err := repo.DeleteExpired(now.Add(time.Hour))
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 expired codes deleted, got %d", deleted)
	}
}

func TestShareLinkRepositoryRevokeByHousehold(t *testing.T) {
	repo := NewShareLinkRepository(openTestDatabase(t))
	now := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

	for _, hash := range []string{"hash-a", "hash-b"} {
		if err := repo.Create(&models.ShareLink{HouseholdID: "h1", TokenHash: hash, ExpiresAt: now.Add(time.Hour)}); err != nil {
			t.Fatalf("create link: %v", err)
		}
	}

	link, found, err := repo.FindByTokenHash("hash-a")
	if err != nil || !found {
		t.Fatalf("FindByTokenHash() = %v, %v", found, err)
	}
	if err := repo.TouchAccessed(link.ID, now); err != nil {
		t.Fatalf("touch accessed: %v", err)
	}

	revoked, err := repo.RevokeByHousehold("h1")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked != 2 {
		t.Fatalf("expected 2 revoked links, got %d", revoked)
	}

	link, _, err = repo.FindByTokenHash("hash-a")
	if err != nil {
		t.Fatalf("reload link: %v", err)
	}
	if !link.Revoked || link.LastAccessedAt == nil {
		t.Fatalf("unexpected link state %#v", link)
	}
}
