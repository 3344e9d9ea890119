package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Cmv       CmvHandlerDeps
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	h := NewCmvHandler(deps.Cmv)
	venue := RequireVenue(deps.Cmv.Venues)

	cmvGroup := protected.Group("/cmv")
	cmvGroup.Post("/sync", h.Sync)
	cmvGroup.Post("/recalculate", h.Recalculate)
	cmvGroup.Post("/retro-sync", h.RetroSync)
	cmvGroup.Post("/cma", h.Cma)
	cmvGroup.Post("/snapshots", h.CreateSnapshot)
	cmvGroup.Get("/health", h.Health)

	cmvGroup.Get("/weekly", h.List)
	cmvGroup.Get("/weekly/export", h.Export)
	cmvGroup.Get("/weekly/:venue/:year/:week", venue, h.Get)
	cmvGroup.Patch("/weekly/:venue/:year/:week", venue, h.Patch)
	cmvGroup.Post("/weekly/:venue/:year/:week/finalize", venue, h.Finalize)
	cmvGroup.Post("/weekly/:venue/:year/:week/unlock", venue, h.Unlock)
}
