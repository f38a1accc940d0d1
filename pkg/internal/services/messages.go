package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

// Per-channel locks serialize persist+publish so broadcast order within a
// channel matches commit order.
var channelLocks sync.Map

func lockChannel(channelId uint) *sync.Mutex {
	val, _ := channelLocks.LoadOrStore(channelId, &sync.Mutex{})
	return val.(*sync.Mutex)
}

func releaseChannelLock(channelId uint) {
	channelLocks.Delete(channelId)
}

func CountMessage(channel models.Channel) int64 {
	var count int64
	if err := database.C.Model(&models.Message{}).
		Where("channel_id = ?", channel.ID).
		Count(&count).Error; err != nil {
		return 0
	}
	return count
}

func GetMessage(id uint) (models.Message, error) {
	var message models.Message
	if err := database.C.
		Where("id = ?", id).
		Preload("Sender").
		Preload("Attachments").
		First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message, fmt.Errorf("%w: message %d", ErrNotFound, id)
		}
		return message, err
	}
	return message, nil
}

// ListMessage returns a channel thread in ascending sequence order. The
// requester must be a member.
func ListMessage(channel models.Channel, requester models.Account, take int, offset int) ([]models.Message, error) {
	if _, err := EnsureMember(requester.ID, channel.ID); err != nil {
		return nil, err
	}
	if take <= 0 || take > 100 {
		take = 100
	}

	var messages []models.Message
	if err := database.C.
		Where("channel_id = ?", channel.ID).
		Limit(take).Offset(offset).
		Order("sequence ASC").
		Preload("Sender").
		Preload("Attachments").
		Find(&messages).Error; err != nil {
		return messages, err
	}
	return messages, nil
}

// ListDirectMessage returns the two-party thread regardless of which side
// asks; an empty thread is fine when the pair never talked.
func ListDirectMessage(user models.Account, other models.Account, take int, offset int) ([]models.Message, error) {
	channel, err := GetDirectChannel(user.ID, other.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.Message{}, nil
		}
		return nil, err
	}

	return ListMessage(channel, user, take, offset)
}

func NewChannelMessage(content string, sender models.Account, channel models.Channel, files ...*multipart.FileHeader) (models.Message, []AttachmentFailure, error) {
	var message models.Message
	if _, err := EnsureMember(sender.ID, channel.ID); err != nil {
		return message, nil, err
	}

	message = models.Message{
		Uuid:      uuid.NewString(),
		Content:   content,
		ChannelID: channel.ID,
		SenderID:  sender.ID,
	}

	return appendMessage(channel, message, sender, files)
}

func NewDirectMessage(content string, sender models.Account, receiver models.Account, files ...*multipart.FileHeader) (models.Message, []AttachmentFailure, error) {
	channel, err := GetOrCreateDirectChannel(sender, receiver)
	if err != nil {
		return models.Message{}, nil, err
	}

	message := models.Message{
		Uuid:       uuid.NewString(),
		Content:    content,
		ChannelID:  channel.ID,
		SenderID:   sender.ID,
		ReceiverID: &receiver.ID,
	}

	return appendMessage(channel, message, sender, files)
}

func appendMessage(channel models.Channel, message models.Message, sender models.Account, files []*multipart.FileHeader) (models.Message, []AttachmentFailure, error) {
	mu := lockChannel(channel.ID)
	mu.Lock()
	defer mu.Unlock()

	if err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Channel{}).
			Where("id = ?", channel.ID).
			Update("last_message_seq", gorm.Expr("last_message_seq + 1")).Error; err != nil {
			return err
		}

		var counter models.Channel
		if err := tx.Select("last_message_seq").First(&counter, channel.ID).Error; err != nil {
			return err
		}
		message.Sequence = counter.LastMessageSeq

		return tx.Create(&message).Error
	}); err != nil {
		return message, nil, err
	}

	// Attachments bind before the publish so the pushed event carries their
	// metadata, not just the bare message row.
	failures := AttachFiles(&message, files)

	message.Sender = sender
	BroadcastEvent(channel, models.StreamEvent{
		Type:    models.EventNewMessage,
		Payload: message,
	})
	NotifyMessageOffline(channel, message)

	return message, failures, nil
}

// EditMessage is permitted for the original sender or a channel admin.
func EditMessage(id uint, requester models.Account, content string) (models.Message, error) {
	message, err := GetMessage(id)
	if err != nil {
		return message, err
	}
	if message.SenderID != requester.ID && !IsAdmin(requester.ID, message.ChannelID) {
		return message, fmt.Errorf("%w: no permission to edit this message", ErrUnauthorized)
	}

	now := time.Now()
	message.Content = content
	message.EditedAt = &now
	if err := database.C.Save(&message).Error; err != nil {
		return message, err
	}

	channel, err := GetChannel(message.ChannelID)
	if err != nil {
		return message, err
	}

	BroadcastEvent(channel, models.StreamEvent{
		Type: models.EventMessageEdited,
		Payload: map[string]any{
			"message_id": message.ID,
			"edited_by":  requester.ID,
			"message":    message,
		},
	})

	return message, nil
}

// DeleteMessage cascades attachment deletion. Blob removal is best-effort;
// a failing store is reported but never blocks the metadata delete.
func DeleteMessage(id uint, requester models.Account) error {
	message, err := GetMessage(id)
	if err != nil {
		return err
	}
	if message.SenderID != requester.ID && !IsAdmin(requester.ID, message.ChannelID) {
		return fmt.Errorf("%w: no permission to delete this message", ErrUnauthorized)
	}

	if err := DeleteMessageAttachments(message); err != nil {
		log.Warn().Err(err).Uint("message", message.ID).
			Msg("Some attachment blobs could not be removed during message deletion...")
	}

	if err := database.C.Delete(&message).Error; err != nil {
		return err
	}

	channel, err := GetChannel(message.ChannelID)
	if err != nil {
		return err
	}

	BroadcastEvent(channel, models.StreamEvent{
		Type: models.EventMessageDeleted,
		Payload: map[string]any{
			"message_id": message.ID,
			"deleted_by": requester.ID,
		},
	})

	return nil
}
