package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/palaver-im/palaver/pkg/internal/http/exts"
	"github.com/palaver-im/palaver/pkg/internal/models"
	"github.com/palaver-im/palaver/pkg/internal/services"
)

func listChannel(c *fiber.Ctx) error {
	take := c.QueryInt("take", 100)
	offset := c.QueryInt("offset", 0)

	channels, err := services.ListChannel(take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(channels)
}

func listOwnedChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	channels, err := services.ListChannelWithUser(user, models.ChannelTypeGroup)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(channels)
}

func getChannel(c *fiber.Ctx) error {
	id, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	channel, err := services.GetChannel(uint(id))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(channel)
}

func createChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	var data struct {
		Name        string `json:"name" validate:"required,max=96"`
		Description string `json:"description" validate:"max=480"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	channel, err := services.NewChannel(data.Name, data.Description, user)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(channel)
}

func editChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	id, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var data struct {
		Name        string `json:"name" validate:"required,max=96"`
		Description string `json:"description" validate:"max=480"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	channel, err := services.EditChannel(uint(id), data.Name, data.Description, user)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(channel)
}

func deleteChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	id, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := services.DeleteChannel(uint(id), user); err != nil {
		return mapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func joinChannelByInviteCode(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	var data struct {
		Code string `json:"code" validate:"required,len=6"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	channel, err := services.JoinChannelByInviteCode(data.Code, user)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(channel)
}
