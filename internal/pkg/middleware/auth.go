package middleware

import (
	"github.com/gofiber/fiber/v2"

	"gtacts/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in web session; redirects into the Google
// consent flow if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Redirect("/auth/google", fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPISessionAuth ensures a logged-in session for API routes and returns
// JSON 401 instead of redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "unauthorized",
			"message":  "login required",
			"location": "/auth/google",
		})
	}
	return c.Next()
}
