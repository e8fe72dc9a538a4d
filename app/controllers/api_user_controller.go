package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gtacts/app/repository"
	"gtacts/internal/pkg/usercontext"
)

// HandleAPIMe returns the stored profile of the logged-in user (tokens are
// never serialized)
func HandleAPIMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	repo := repository.GetGlobalFactory().GetCredentialRepository()
	cred, err := repo.GetByIdentityKey(userCtx.IdentityKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	return c.JSON(cred)
}

// HandleAPIUsers lists all stored profiles.
// Demo endpoint kept from the original app; it would not survive a production
// security review.
func HandleAPIUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetCredentialRepository()
	creds, err := repo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load users"})
	}
	return c.JSON(creds)
}

// HandleAPIUserByID returns one stored profile by identity key (demo endpoint)
func HandleAPIUserByID(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetCredentialRepository()
	cred, err := repo.GetByIdentityKey(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}
	return c.JSON(cred)
}
