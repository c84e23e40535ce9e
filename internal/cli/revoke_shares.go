package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/terraincognita07/sidetrack/internal/db"
	"github.com/terraincognita07/sidetrack/internal/services"
	"gorm.io/gorm"
)

// RunRevokeSharesCommand revokes every share link of the household owned by
// email and reports how many links were live.
func RunRevokeSharesCommand(database *gorm.DB, email string, out io.Writer) error {
	normalizedEmail := services.NormalizeAuthEmail(email)
	if normalizedEmail == "" {
		return errors.New("valid email is required")
	}

	repositories := db.NewRepositories(database)
	user, found, err := repositories.Users.FindByNormalizedEmail(normalizedEmail)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !found {
		return fmt.Errorf("user %s not found", normalizedEmail)
	}

	household, found, err := repositories.Households.FindOwnedBy(user.ID)
	if err != nil {
		return fmt.Errorf("load household: %w", err)
	}
	if !found {
		return fmt.Errorf("user %s does not own a household", normalizedEmail)
	}

	shares := services.NewShareService(repositories.ShareLinks, repositories.Entries, "", nil)
	revoked, err := shares.RevokeShareLinks(household.ID)
	if err != nil {
		return fmt.Errorf("revoke share links: %w", err)
	}

	fmt.Fprintf(out, "Revoked %d share link(s) for household %s\n", revoked, household.ID)
	return nil
}
