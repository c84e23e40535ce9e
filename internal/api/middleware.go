package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/services"
)

const (
	authCookieName    = "sidetrack_auth"
	contextSessionKey = "current_session"
)

func currentSession(c *fiber.Ctx) (*services.Session, bool) {
	session, ok := c.Locals(contextSessionKey).(*services.Session)
	return session, ok && session != nil
}

// SecretRequired answers 500 when no signing key is configured.
func (handler *Handler) SecretRequired(c *fiber.Ctx) error {
	if len(handler.secretKey) == 0 {
		return apiError(c, fiber.StatusInternalServerError, "server misconfigured")
	}
	return c.Next()
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	if len(handler.secretKey) == 0 {
		return apiError(c, fiber.StatusInternalServerError, "server misconfigured")
	}
	session, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	c.Locals(contextSessionKey, session)
	return c.Next()
}

func (handler *Handler) PatientOnly(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !session.IsPatient() {
		return apiError(c, fiber.StatusForbidden, services.ErrPatientOnly.Error())
	}
	return c.Next()
}
