package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"gtacts/app/controllers"
	"gtacts/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	api.Get("/contacts", middleware.RequireAPISessionAuth, controllers.HandleAPIContacts)
	api.Get("/me", middleware.RequireAPISessionAuth, controllers.HandleAPIMe)

	// demo-only listing endpoints kept from the original app
	api.Get("/users", controllers.HandleAPIUsers)
	api.Get("/users/:id", controllers.HandleAPIUserByID)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
