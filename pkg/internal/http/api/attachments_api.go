package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/palaver-im/palaver/pkg/internal/services"
)

func openAttachment(c *fiber.Ctx) error {
	fileName := c.Params("fileName")

	attachment, stream, err := services.ResolveDownload(fileName)
	if err != nil {
		return mapServiceError(err)
	}

	c.Set(fiber.HeaderContentType, attachment.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(
		"inline; filename=%q", attachment.OriginalName,
	))

	return c.SendStream(stream, int(attachment.Size))
}
