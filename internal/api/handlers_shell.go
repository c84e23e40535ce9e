package api

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/offline"
)

// ShellGateway serves PWA shell assets through the offline cache controller.
func (handler *Handler) ShellGateway(c *fiber.Ctx) error {
	request := offline.Request{
		Method:   c.Method(),
		Path:     string(c.Request().URI().RequestURI()),
		Navigate: isNavigation(c),
	}

	response, err := handler.shell.HandleFetch(c.UserContext(), request)
	if err != nil {
		if errors.Is(err, offline.ErrOffline) {
			return apiError(c, fiber.StatusServiceUnavailable, "offline")
		}
		log.Printf("shell gateway %s: %v", request.Path, err)
		return apiError(c, fiber.StatusBadGateway, "shell unavailable")
	}

	if response.ContentType != "" {
		c.Set(fiber.HeaderContentType, response.ContentType)
	}
	return c.Status(response.Status).Send(response.Body)
}

func isNavigation(c *fiber.Ctx) bool {
	if strings.EqualFold(c.Get("Sec-Fetch-Mode"), "navigate") {
		return true
	}
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), "text/html")
}
