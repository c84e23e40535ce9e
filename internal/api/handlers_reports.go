package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/services"
)

func (handler *Handler) householdEntries(c *fiber.Ctx) (patient []models.Entry, partner []models.Entry, err error) {
	session, _ := currentSession(c)
	entries, err := handler.sync.Pull(session)
	if err != nil {
		return nil, nil, err
	}
	patient, partner = services.SplitByAuthor(entries)
	return patient, partner, nil
}

// SummaryReport returns the plain-text summary of the patient's entries in the
// requested window.
func (handler *Handler) SummaryReport(c *fiber.Ctx) error {
	window, err := parseWindowQuery(c)
	if err != nil {
		return serviceError(c, err, "")
	}
	patient, _, err := handler.householdEntries(c)
	if err != nil {
		return serviceError(c, err, services.ErrSyncFailed.Error())
	}

	now := handler.now()
	c.Type("txt", "utf-8")
	return c.SendString(services.FormatSummaryAt(window.Apply(patient, now), now))
}

func (handler *Handler) ChartReport(c *fiber.Ctx) error {
	window, err := parseWindowQuery(c)
	if err != nil {
		return serviceError(c, err, "")
	}
	patient, partner, err := handler.householdEntries(c)
	if err != nil {
		return serviceError(c, err, services.ErrSyncFailed.Error())
	}
	return c.JSON(services.BuildChartData(patient, partner, window, handler.now()))
}

func (handler *Handler) TopSymptomsReport(c *fiber.Ctx) error {
	window, err := parseWindowQuery(c)
	if err != nil {
		return serviceError(c, err, "")
	}
	topN, ok := parsePositiveIntQuery(c, "top", services.DefaultTopSymptoms)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid top")
	}
	patient, _, err := handler.householdEntries(c)
	if err != nil {
		return serviceError(c, err, services.ErrSyncFailed.Error())
	}
	return c.JSON(fiber.Map{
		"window":   window.String(),
		"symptoms": services.TopSymptomsByAvgSeverity(patient, window, topN, handler.now()),
	})
}

// TrendReport returns daily mean severity per requested type. Without a types
// query the top symptoms of the window are used.
func (handler *Handler) TrendReport(c *fiber.Ctx) error {
	window, err := parseWindowQuery(c)
	if err != nil {
		return serviceError(c, err, "")
	}
	patient, _, err := handler.householdEntries(c)
	if err != nil {
		return serviceError(c, err, services.ErrSyncFailed.Error())
	}

	now := handler.now()
	types := splitCSVQuery(c.Query("types"))
	if len(types) == 0 {
		for _, ranking := range services.TopSymptomsByAvgSeverity(patient, window, services.DefaultTopSymptoms, now) {
			types = append(types, ranking.Type)
		}
	}
	return c.JSON(services.BuildSymptomTrendData(patient, window, types, now))
}
