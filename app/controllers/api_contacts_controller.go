package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gtacts/internal/pkg/cache"
	"gtacts/internal/pkg/contacts"
	"gtacts/internal/pkg/usercontext"
)

// ContactFetcher is the slice of the contacts pipeline this controller needs;
// tests substitute a fake.
type ContactFetcher interface {
	FetchContacts(ctx context.Context, identityKey string) ([]contacts.ContactRecord, error)
}

var (
	contactFetcher   ContactFetcher
	contactsCacheTTL time.Duration
)

// InitializeContactsController wires the fetcher and the cache policy. A TTL
// of zero disables the contacts cache entirely.
func InitializeContactsController(fetcher ContactFetcher, cacheTTL time.Duration) {
	contactFetcher = fetcher
	contactsCacheTTL = cacheTTL
}

// HandleAPIContacts serves the normalized contacts feed of the logged-in user
// as a JSON array of {name, email, phone}
func HandleAPIContacts(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required", "location": "/auth/google"})
	}
	if contactFetcher == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "contacts fetcher not configured"})
	}

	cacheKey := "contacts:" + userCtx.IdentityKey
	if contactsCacheTTL > 0 {
		if cached, err := cache.Get(cacheKey); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	records, err := contactFetcher.FetchContacts(c.Context(), userCtx.IdentityKey)
	if err != nil {
		switch {
		case errors.Is(err, contacts.ErrAuthExpired), errors.Is(err, gorm.ErrRecordNotFound):
			// the stored token is beyond refreshing; the user has to
			// walk through consent again
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "reauthentication_required",
				"message":  "Your Google session expired, please sign in again",
				"location": "/auth/google",
			})
		case errors.Is(err, contacts.ErrMalformedFeed):
			log.Printf("contacts feed unparseable for %s: %v", userCtx.IdentityKey, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "bad_feed", "message": "Google returned an unreadable contacts feed"})
		default:
			log.Printf("contacts fetch failed for %s: %v", userCtx.IdentityKey, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream_failed", "message": "Could not reach Google contacts"})
		}
	}

	if contactsCacheTTL > 0 {
		if payload, err := json.Marshal(records); err == nil {
			if err := cache.Set(cacheKey, payload, contactsCacheTTL); err != nil {
				log.Printf("contacts cache write failed: %v", err)
			}
		}
	}

	return c.JSON(records)
}
