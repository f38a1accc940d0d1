package api

import (
	"github.com/gofiber/contrib/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/palaver-im/palaver/pkg/internal/models"
	"github.com/palaver-im/palaver/pkg/internal/services"
)

// parseCommandFrame decodes one inbound frame into a fresh envelope, so a
// frame omitting a field can never inherit it from the previous frame.
func parseCommandFrame(packet []byte) (models.StreamEvent, error) {
	var task models.StreamEvent
	err := jsoniter.Unmarshal(packet, &task)
	return task, err
}

// unifiedGateway runs one authenticated live connection: register, loop
// over inbound command frames, unregister on the way out.
func unifiedGateway(c *websocket.Conn) {
	user := c.Locals("user").(models.Account)

	services.ClientRegister(user, c)

	for {
		_, packet, err := c.ReadMessage()
		if err != nil {
			break
		}

		task, err := parseCommandFrame(packet)
		if err != nil {
			_ = services.ClientWrite(c, models.StreamEvent{
				Type:    models.EventError,
				Message: "unable to unmarshal your command, requires json request",
			})
			continue
		}

		if reply := services.DealCommand(task, user); reply != nil {
			if err := services.ClientWrite(c, *reply); err != nil {
				break
			}
		}
	}

	services.ClientUnregister(user, c)
	services.UnfocusAll(user.ID)
}
