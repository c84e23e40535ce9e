package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	registerAPIRoutes(app, handler)
	app.Use("/api", handler.NotFound)
	if handler.shell != nil {
		app.Get("/*", handler.ShellGateway)
	}
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth", handler.SecretRequired)
	auth.Post("/request-code", handler.RequestLoginCode)
	auth.Post("/verify-code", handler.VerifyLoginCode)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	api.Get("/session", handler.AuthRequired, handler.CurrentSession)

	households := api.Group("/households", handler.AuthRequired)
	households.Post("/claim-invite", handler.ClaimInvite)
	households.Get("/invites", handler.PatientOnly, handler.ListInvites)
	households.Post("/invites", handler.PatientOnly, handler.CreateInvite)
	households.Delete("/invites/:id", handler.PatientOnly, handler.RevokeInvite)
	households.Get("/members", handler.PatientOnly, handler.ListMembers)
	households.Delete("/members/:userID", handler.PatientOnly, handler.RemoveMember)
	households.Get("/names", handler.GetDisplayNames)
	households.Put("/names", handler.UpdateDisplayName)

	entries := api.Group("/entries", handler.AuthRequired)
	entries.Get("", handler.PullEntries)
	entries.Post("", handler.CreateEntry)
	entries.Post("/sync", handler.PushEntries)
	entries.Delete("/:id", handler.RemoveEntry)

	reports := api.Group("/reports", handler.AuthRequired)
	reports.Get("/summary", handler.SummaryReport)
	reports.Get("/chart", handler.ChartReport)
	reports.Get("/top-symptoms", handler.TopSymptomsReport)
	reports.Get("/trends", handler.TrendReport)

	api.Post("/share-links", handler.AuthRequired, handler.CreateShareLink)
	api.Get("/doctor-summary", handler.SecretRequired, handler.DoctorSummary)
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
