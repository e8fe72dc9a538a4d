package controllers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"github.com/sujit-baniya/flash"

	"gtacts/app/repository"
	"gtacts/internal/pkg/session"
	"gtacts/internal/pkg/usercontext"
)

// HandleOAuthCallback completes the provider flow, upserts the credential and
// logs the user in
func HandleOAuthCallback(c *fiber.Ctx) error {
	// Complete OAuth with provider and obtain unified user
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("Sign-in with %s failed", c.Params("provider", "google")),
		}
		log.Printf("OAuth callback failed: %v", err)
		return flash.WithError(c, fm).Redirect("/loginerror", fiber.StatusSeeOther)
	}

	// Upsert the credential. Google only hands out a refresh token on the
	// first consent; an absent one must not erase the stored one.
	fields := repository.CredentialFields{
		DisplayName: repository.StringPtr(displayNameOf(u.Name, u.NickName, u.Email)),
		AccessToken: repository.StringPtr(u.AccessToken),
	}
	if u.RefreshToken != "" {
		fields.RefreshToken = repository.StringPtr(u.RefreshToken)
	}
	repo := repository.GetGlobalFactory().GetCredentialRepository()
	if err := repo.Upsert(u.UserID, fields); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Could not store your account",
		}
		log.Printf("credential upsert failed for %s: %v", u.UserID, err)
		return flash.WithError(c, fm).Redirect("/loginerror", fiber.StatusSeeOther)
	}

	// Create app session
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session init failed")
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyIdentityKey, u.UserID)
	sess.Set(usercontext.KeyDisplayName, displayNameOf(u.Name, u.NickName, u.Email))
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session save failed")
	}

	return c.Redirect("/contacts", fiber.StatusSeeOther)
}

// HandleAuthLogout terminates the app session
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("session destroy failed: %v", err)
		}
	}
	c.Locals(usercontext.KeyFromProtected, false)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleLoginError renders the dedicated OAuth failure view
func HandleLoginError(c *fiber.Ctx) error {
	fm := flash.Get(c)
	message, _ := fm["message"].(string)
	if message == "" {
		message = "Sign-in failed"
	}
	return c.Render("loginerror", fiber.Map{
		"Title":   "Sign-in failed",
		"Message": message,
	})
}

func displayNameOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return "User"
}
