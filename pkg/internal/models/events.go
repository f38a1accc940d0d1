package models

import jsoniter "github.com/json-iterator/go"

const (
	EventNewMessage     = "NEW_MESSAGE"
	EventMessageEdited  = "MESSAGE_EDITED"
	EventMessageDeleted = "MESSAGE_DELETED"
	EventTypingStatus   = "TYPING_STATUS"
	EventError          = "ERROR"
)

// StreamEvent is both the fan-out envelope pushed to live connections and
// the command envelope clients send over the gateway.
type StreamEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}

func (v StreamEvent) Marshal() []byte {
	data, _ := jsoniter.Marshal(v)
	return data
}

func StreamEventFromError(err error) StreamEvent {
	return StreamEvent{
		Type:    EventError,
		Message: err.Error(),
	}
}
