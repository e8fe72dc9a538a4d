package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the authenticated identity of a request
type UserContext struct {
	IdentityKey string `json:"identity_key"`
	DisplayName string `json:"display_name"`
	IsLoggedIn  bool   `json:"is_logged_in"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals("USER_CONTEXT"); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetIdentityKey returns the current user's identity key, or empty string if not logged in
func GetIdentityKey(c *fiber.Ctx) string {
	return GetUserContext(c).IdentityKey
}
