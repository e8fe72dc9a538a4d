package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"gtacts/internal/pkg/session"
	"gtacts/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the app session into a UserContext for every
// request so controllers never touch the session store directly
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	anonymous := func() error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{IsLoggedIn: false})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	store := session.GetSessionStore()
	if store == nil {
		return anonymous()
	}
	sess, err := store.Get(c)
	if err != nil {
		return anonymous()
	}

	identityKey, _ := sess.Get(usercontext.KeyIdentityKey).(string)
	if identityKey == "" {
		return anonymous()
	}

	displayName, _ := sess.Get(usercontext.KeyDisplayName).(string)
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		IdentityKey: identityKey,
		DisplayName: displayName,
		IsLoggedIn:  true,
	})
	c.Locals(usercontext.KeyFromProtected, true)

	return c.Next()
}
