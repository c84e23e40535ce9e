package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps service sentinels onto HTTP statuses. Unknown errors are
// reported as 500 with fallback as the message.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, models.ErrInvalidSeverity),
		errors.Is(err, models.ErrInvalidEntry),
		errors.Is(err, services.ErrInvalidWindow),
		errors.Is(err, services.ErrInviteEmailInvalid),
		errors.Is(err, services.ErrDisplayNameTooLong),
		errors.Is(err, services.ErrAuthEmailInvalid),
		errors.Is(err, services.ErrShareTokenMissing):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAuthLoginCodeInvalid),
		errors.Is(err, services.ErrLoginCodeRejected):
		return apiError(c, fiber.StatusUnauthorized, services.ErrLoginCodeRejected.Error())
	case errors.Is(err, services.ErrNotEntryOwner),
		errors.Is(err, services.ErrPatientOnly),
		errors.Is(err, services.ErrShareLinkRevoked),
		errors.Is(err, services.ErrShareLinkExpired):
		return apiError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrShareLinkNotFound):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSessionMissing):
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	default:
		return apiError(c, fiber.StatusInternalServerError, fallback)
	}
}

func parseWindowQuery(c *fiber.Ctx) (services.Window, error) {
	return services.ParseWindow(c.Query("window"))
}

func parsePositiveIntQuery(c *fiber.Ctx, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func splitCSVQuery(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
