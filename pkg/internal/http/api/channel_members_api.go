package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/palaver-im/palaver/pkg/internal/http/exts"
	"github.com/palaver-im/palaver/pkg/internal/models"
	"github.com/palaver-im/palaver/pkg/internal/services"
)

func listChannelMembers(c *fiber.Ctx) error {
	id, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	take := c.QueryInt("take", 0)
	offset := c.QueryInt("offset", 0)

	channel, err := services.GetChannel(uint(id))
	if err != nil {
		return mapServiceError(err)
	}

	count, err := services.CountChannelMember(channel.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	members, err := services.ListChannelMember(channel.ID, take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  members,
	})
}

func addChannelMember(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	id, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var data struct {
		Target string `json:"target" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	channel, err := services.GetChannel(uint(id))
	if err != nil {
		return mapServiceError(err)
	}

	// Adding someone else requires admin rights on the channel.
	if _, err := services.EnsureAdmin(user.ID, channel.ID); err != nil {
		return mapServiceError(err)
	}

	account, err := services.GetAccountWithName(data.Target)
	if err != nil {
		return mapServiceError(err)
	}

	member, err := services.AddChannelMember(account, channel)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(member)
}

func removeChannelMember(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	channelId, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	accountId, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := services.RemoveChannelMember(uint(channelId), uint(accountId), user); err != nil {
		return mapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func promoteChannelAdmin(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	channelId, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	accountId, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := services.PromoteChannelAdmin(uint(channelId), uint(accountId), user); err != nil {
		return mapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}
