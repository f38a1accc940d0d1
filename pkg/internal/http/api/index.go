package api

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		api.Get("/users/me", authMiddleware, getUserinfo)

		api.Get("/attachments/o/:fileName", cache.New(cache.Config{
			Expiration:   365 * 24 * time.Hour,
			CacheControl: true,
		}), openAttachment)

		channels := api.Group("/channels").Name("Channels API")
		{
			channels.Get("/", listChannel)
			channels.Get("/me", authMiddleware, listOwnedChannel)
			channels.Post("/", authMiddleware, createChannel)
			channels.Post("/join", authMiddleware, joinChannelByInviteCode)
			channels.Get("/:channelId", getChannel)
			channels.Put("/:channelId", authMiddleware, editChannel)
			channels.Delete("/:channelId", authMiddleware, deleteChannel)

			channels.Get("/:channelId/members", listChannelMembers)
			channels.Post("/:channelId/members", authMiddleware, addChannelMember)
			channels.Delete("/:channelId/members/:accountId", authMiddleware, removeChannelMember)
			channels.Post("/:channelId/members/:accountId/promote", authMiddleware, promoteChannelAdmin)

			channels.Get("/:channelId/messages", authMiddleware, listMessage)
			channels.Post("/:channelId/messages", authMiddleware, newMessage)
			channels.Put("/:channelId/messages/:messageId", authMiddleware, editMessage)
			channels.Delete("/:channelId/messages/:messageId", authMiddleware, deleteMessage)
		}

		dm := api.Group("/dm").Name("Direct Messages API")
		{
			dm.Get("/", authMiddleware, listDirectChannel)
			dm.Post("/", authMiddleware, resolveDirectChannel)
			dm.Get("/:accountId/messages", authMiddleware, listDirectMessage)
			dm.Post("/:accountId/messages", authMiddleware, newDirectMessage)
		}

		api.Get("/unified", authMiddleware, websocket.New(unifiedGateway))
	}
}
