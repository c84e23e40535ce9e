package api

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/services"
)

type requestCodeInput struct {
	Email string `json:"email" form:"email"`
}

type verifyCodeInput struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) RequestLoginCode(c *fiber.Ctx) error {
	input := requestCodeInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	delivery, err := handler.logins.RequestLoginCode(c.UserContext(), input.Email, handler.now())
	if err != nil {
		return serviceError(c, err, services.ErrLoginCodeCreateFailed.Error())
	}

	response := fiber.Map{"ok": true, "emailed": delivery.Emailed}
	if delivery.DevCode != "" {
		response["dev_code"] = delivery.DevCode
	}
	return c.JSON(response)
}

// VerifyLoginCode signs the user in. A pending invite is claimed before the
// session opens so a new partner lands in the inviting household; claim
// failures are treated as no invite.
func (handler *Handler) VerifyLoginCode(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	if handler.loginLimiter.blocked(limiterKey, handler.now()) {
		return apiError(c, fiber.StatusTooManyRequests, "too many attempts")
	}

	input := verifyCodeInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.logins.VerifyLoginCode(input.Email, input.Code, handler.now())
	if err != nil {
		handler.loginLimiter.fail(limiterKey, handler.now())
		return serviceError(c, err, services.ErrLoginFailed.Error())
	}
	handler.loginLimiter.reset(limiterKey)

	claim, claimed, err := handler.households.ClaimInvite(user)
	if err != nil {
		log.Printf("claim invite for %s: %v", user.ID, err)
		claimed = false
	}

	session, err := handler.sessions.Open(user)
	if err != nil {
		return serviceError(c, err, "failed to create session")
	}

	token, expiresAt, err := handler.buildToken(user)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	handler.setAuthCookie(c, token, expiresAt)

	response := fiber.Map{
		"access_token": token,
		"expires_at":   expiresAt.UTC(),
		"session":      session,
	}
	if claimed {
		response["claimed_invite"] = claim
	}
	return c.JSON(response)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) CurrentSession(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	names, err := handler.households.DisplayNames(session)
	if err != nil {
		return serviceError(c, err, "failed to load household")
	}
	return c.JSON(fiber.Map{
		"session":       session,
		"display_names": names,
	})
}

// ClaimInvite is the explicit claim a client makes after signing in elsewhere.
func (handler *Handler) ClaimInvite(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	user := models.User{ID: session.UserID, Email: session.Email}

	claim, found, err := handler.households.ClaimInvite(user)
	if err != nil {
		return serviceError(c, err, services.ErrClaimInviteFailed.Error())
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "no pending invite")
	}
	return c.JSON(claim)
}

func normalizeDisplayNameInput(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
