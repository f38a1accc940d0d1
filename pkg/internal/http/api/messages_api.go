package api

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/palaver-im/palaver/pkg/internal/http/exts"
	"github.com/palaver-im/palaver/pkg/internal/models"
	"github.com/palaver-im/palaver/pkg/internal/services"
)

func listMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	id, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	take := c.QueryInt("take", 100)
	offset := c.QueryInt("offset", 0)

	channel, _, err := services.GetChannelIdentity(uint(id), user.ID)
	if err != nil {
		return mapServiceError(err)
	}

	messages, err := services.ListMessage(channel, user, take, offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"count": services.CountMessage(channel),
		"data":  messages,
	})
}

// parseMessagePayload accepts either a JSON body or a multipart form with a
// content field and attachment files.
func parseMessagePayload(c *fiber.Ctx) (string, []*multipart.FileHeader, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return "", nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var content string
		if val, ok := form.Value["content"]; ok && len(val) > 0 {
			content = val[0]
		}
		files := form.File["attachments"]

		if len(content) == 0 && len(files) == 0 {
			return "", nil, fiber.NewError(fiber.StatusBadRequest, "message requires content or attachments")
		}
		return content, files, nil
	}

	var data struct {
		Content string `json:"content" validate:"required,max=4096"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return "", nil, err
	}
	return data.Content, nil, nil
}

func newMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	id, err := c.ParamsInt("channelId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	channel, _, err := services.GetChannelIdentity(uint(id), user.ID)
	if err != nil {
		return mapServiceError(err)
	}

	content, files, err := parseMessagePayload(c)
	if err != nil {
		return err
	}

	message, failures, err := services.NewChannelMessage(content, user, channel, files...)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"data":               message,
		"failed_attachments": failures,
	})
}

func editMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	id, err := c.ParamsInt("messageId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var data struct {
		Content string `json:"content" validate:"required,max=4096"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	message, err := services.EditMessage(uint(id), user, data.Content)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(message)
}

func deleteMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	id, err := c.ParamsInt("messageId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := services.DeleteMessage(uint(id), user); err != nil {
		return mapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}
