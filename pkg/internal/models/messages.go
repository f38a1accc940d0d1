package models

import "time"

type Message struct {
	BaseModel

	Uuid    string `json:"uuid"`
	Content string `json:"content"`

	// Per-channel monotonic counter assigned at persistence time; threads
	// are ordered by it instead of wall-clock timestamps.
	Sequence uint64 `json:"sequence" gorm:"index:idx_message_channel_seq"`

	ChannelID  uint    `json:"channel_id" gorm:"index:idx_message_channel_seq"`
	Channel    Channel `json:"channel"`
	SenderID   uint    `json:"sender_id"`
	Sender     Account `json:"sender"`
	ReceiverID *uint   `json:"receiver_id,omitempty"`

	EditedAt *time.Time `json:"edited_at,omitempty"`

	Attachments []Attachment `json:"attachments"`
}

func (v Message) IsEdited() bool {
	return v.EditedAt != nil
}
