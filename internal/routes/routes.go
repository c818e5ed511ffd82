package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fintrackeasy/user-service/internal/handlers"
)

// Register wires the user resource. Fiber matches in registration order, so
// /me, /verify-email and /email/:email come before the /:id wildcard.
func Register(app *fiber.App, h *handlers.UserHandler, auth fiber.Handler, limit fiber.Handler) {
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api/users")

	api.Post("/register", limit, h.Register)
	api.Get("/verify-email", limit, h.VerifyEmail)

	api.Get("/", auth, h.List)
	api.Get("/me", auth, h.Me)
	api.Get("/email/:email", auth, h.GetByEmail)
	api.Get("/:id", auth, h.GetByID)
	api.Patch("/:id", auth, h.UpdateProfile)
	api.Delete("/:id", auth, h.Delete)
}
