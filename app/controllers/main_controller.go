package controllers

import (
	"github.com/gofiber/fiber/v2"

	"gtacts/internal/pkg/usercontext"
)

// HandleIndex renders the landing page with either a sign-in link or a link
// into the directory
func HandleIndex(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.Render("index", fiber.Map{
		"Title":       "gtacts",
		"IsLoggedIn":  userCtx.IsLoggedIn,
		"DisplayName": userCtx.DisplayName,
	})
}

// HandleContacts renders the searchable directory view; the browser loads the
// actual records from /api/contacts
func HandleContacts(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.Render("contacts", fiber.Map{
		"Title":       "Your contacts",
		"DisplayName": userCtx.DisplayName,
	})
}
