package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/palaver-im/palaver/pkg/internal/http/exts"
	"github.com/palaver-im/palaver/pkg/internal/models"
	"github.com/palaver-im/palaver/pkg/internal/services"
)

func listDirectChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	channels, err := services.ListDirectChannelWithUser(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(channels)
}

func resolveDirectChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	var data struct {
		RelatedID uint `json:"related_id" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	related, err := services.GetAccount(data.RelatedID)
	if err != nil {
		return mapServiceError(err)
	}

	channel, err := services.GetOrCreateDirectChannel(user, related)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(channel)
}

func listDirectMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	accountId, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	take := c.QueryInt("take", 100)
	offset := c.QueryInt("offset", 0)

	other, err := services.GetAccount(uint(accountId))
	if err != nil {
		return mapServiceError(err)
	}

	messages, err := services.ListDirectMessage(user, other, take, offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(messages)
}

func newDirectMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	accountId, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	receiver, err := services.GetAccount(uint(accountId))
	if err != nil {
		return mapServiceError(err)
	}

	content, files, err := parseMessagePayload(c)
	if err != nil {
		return err
	}

	message, failures, err := services.NewDirectMessage(content, user, receiver, files...)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"data":               message,
		"failed_attachments": failures,
	})
}
