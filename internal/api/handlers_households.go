package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/services"
)

type inviteInput struct {
	Email string `json:"email" form:"email"`
}

type displayNameInput struct {
	DisplayName string `json:"display_name" form:"display_name"`
}

func (handler *Handler) ListInvites(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	invites, err := handler.households.PendingInvites(session)
	if err != nil {
		return serviceError(c, err, services.ErrHouseholdLoadFailed.Error())
	}
	return c.JSON(fiber.Map{"invites": invites})
}

func (handler *Handler) CreateInvite(c *fiber.Ctx) error {
	input := inviteInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	session, _ := currentSession(c)
	invite, err := handler.households.CreateInvite(session, input.Email)
	if err != nil {
		return serviceError(c, err, services.ErrCreateInviteFailed.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(invite)
}

func (handler *Handler) RevokeInvite(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	if err := handler.households.RevokeInvite(session, strings.TrimSpace(c.Params("id"))); err != nil {
		return serviceError(c, err, services.ErrHouseholdLoadFailed.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ListMembers(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	members, err := handler.households.Members(session)
	if err != nil {
		return serviceError(c, err, services.ErrHouseholdLoadFailed.Error())
	}
	return c.JSON(fiber.Map{"members": members})
}

func (handler *Handler) RemoveMember(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	userID := strings.TrimSpace(c.Params("userID"))
	if userID == session.UserID {
		return apiError(c, fiber.StatusBadRequest, "cannot remove yourself")
	}
	if err := handler.households.RemoveMember(session, userID); err != nil {
		return serviceError(c, err, services.ErrHouseholdLoadFailed.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) GetDisplayNames(c *fiber.Ctx) error {
	session, _ := currentSession(c)
	names, err := handler.households.DisplayNames(session)
	if err != nil {
		return serviceError(c, err, services.ErrHouseholdLoadFailed.Error())
	}
	return c.JSON(names)
}

func (handler *Handler) UpdateDisplayName(c *fiber.Ctx) error {
	input := displayNameInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	session, _ := currentSession(c)
	if err := handler.households.SyncDisplayName(session, normalizeDisplayNameInput(input.DisplayName)); err != nil {
		return serviceError(c, err, services.ErrHouseholdLoadFailed.Error())
	}
	return handler.GetDisplayNames(c)
}
