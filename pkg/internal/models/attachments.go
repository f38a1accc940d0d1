package models

type Attachment struct {
	BaseModel

	// Storage-assigned opaque name; the client-provided one is kept for display.
	FileName     string `json:"file_name" gorm:"uniqueIndex"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`

	// Which blob backend holds the bytes, so deletes reach the right store.
	Backend string `json:"backend"`

	MessageID uint    `json:"message_id"`
	Message   Message `json:"message"`
}
