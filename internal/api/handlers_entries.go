package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/services"
)

const (
	entryKindSeverity    = "severity"
	entryKindEvent       = "event"
	entryKindObservation = "observation"
	entryKindNote        = "note"
)

type createEntryInput struct {
	Kind     string `json:"kind"`
	Type     string `json:"type"`
	Severity int    `json:"severity"`
	Notes    string `json:"notes"`
	Author   string `json:"author"`
	Date     string `json:"date"`
}

type pushEntriesInput struct {
	Entries []models.Entry `json:"entries"`
}

func (handler *Handler) PullEntries(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	entries, err := handler.sync.Pull(session)
	if err != nil {
		return serviceError(c, err, services.ErrSyncFailed.Error())
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// CreateEntry builds an entry server-side with a fresh id and timestamp and
// stores it through the sync gateway.
func (handler *Handler) CreateEntry(c *fiber.Ctx) error {
	input := createEntryInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	entry, err := handler.buildEntry(input)
	if err != nil {
		return serviceError(c, err, "failed to create entry")
	}
	if err := entry.Validate(); err != nil {
		return serviceError(c, err, "failed to create entry")
	}

	session, _ := currentSession(c)
	if _, err := handler.sync.Push(session, []models.Entry{entry}); err != nil {
		return serviceError(c, err, services.ErrSyncFailed.Error())
	}
	entry.CreatedBy = session.UserID
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) buildEntry(input createEntryInput) (models.Entry, error) {
	entryType := strings.TrimSpace(input.Type)
	notes := strings.TrimSpace(input.Notes)

	switch strings.ToLower(strings.TrimSpace(input.Kind)) {
	case entryKindSeverity, "":
		if entryType == "" {
			return models.Entry{}, models.ErrInvalidEntry
		}
		return handler.entries.CreateEntry(entryType, input.Severity, notes)
	case entryKindEvent:
		if entryType == "" {
			return models.Entry{}, models.ErrInvalidEntry
		}
		return handler.entries.CreateEventEntry(entryType, notes), nil
	case entryKindObservation:
		if entryType == "" {
			return models.Entry{}, models.ErrInvalidEntry
		}
		return handler.entries.CreatePartnerObservation(entryType, input.Severity, notes)
	case entryKindNote:
		return handler.entries.CreateDailyNote(input.Author, notes, input.Date), nil
	default:
		return models.Entry{}, models.ErrInvalidEntry
	}
}

func (handler *Handler) PushEntries(c *fiber.Ctx) error {
	input := pushEntriesInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	session, _ := currentSession(c)
	result, err := handler.sync.Push(session, input.Entries)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  services.ErrSyncFailed.Error(),
			"result": result,
		})
	}
	return c.JSON(result)
}

func (handler *Handler) RemoveEntry(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	if err := handler.sync.Remove(session, strings.TrimSpace(c.Params("id"))); err != nil {
		return serviceError(c, err, services.ErrSyncFailed.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
