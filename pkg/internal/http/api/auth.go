package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/palaver-im/palaver/pkg/internal/models"
	"github.com/palaver-im/palaver/pkg/internal/services"
)

// authMiddleware resolves the bearer credential into an account before any
// handler (or the websocket handshake) runs.
func authMiddleware(c *fiber.Ctx) error {
	token := c.Query("tk")
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if len(token) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "missing credentials")
	}

	user, err := services.Authenticate(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	c.Locals("user", user)
	return c.Next()
}

func getUserinfo(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	return c.JSON(user)
}

// mapServiceError translates the service failure taxonomy onto HTTP status.
func mapServiceError(err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	}
	return fiber.NewError(status, err.Error())
}
