package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/services"
)

func (handler *Handler) CreateShareLink(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	shareURL, err := handler.shares.CreateShareLink(session)
	if err != nil {
		return serviceError(c, err, services.ErrCreateShareLinkFailed.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": shareURL})
}

// DoctorSummary is public: the share token in the query is the credential.
func (handler *Handler) DoctorSummary(c *fiber.Ctx) error {
	summary, err := handler.shares.DoctorSummary(c.Query("share"))
	if err != nil {
		return serviceError(c, err, services.ErrDoctorSummaryFailed.Error())
	}
	return c.JSON(summary)
}
