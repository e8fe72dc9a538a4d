package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"gtacts/app/controllers"
	"gtacts/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", controllers.HandleIndex)
	app.Get("/loginerror", controllers.HandleLoginError)
	app.Get("/logout", controllers.HandleAuthLogout)

	// Directory view, browser loads records from /api/contacts
	app.Get("/contacts", middleware.RequireAuth, controllers.HandleContacts)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
}
