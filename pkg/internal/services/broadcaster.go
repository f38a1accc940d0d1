package services

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

// BroadcastEvent fans a typed event out to the affected parties: both
// participants of a direct channel, or every member of a group channel.
// Failures are non-fatal to the operation that caused the event.
func BroadcastEvent(channel models.Channel, event models.StreamEvent) {
	if channel.IsDirect() {
		for _, userId := range channel.DirectMembers {
			PushUser(userId, event)
		}
		return
	}

	for _, userId := range listMemberAccountIDs(channel.ID) {
		PushUser(userId, event)
	}
}

func listMemberAccountIDs(channelId uint) []uint {
	var members []models.ChannelMember
	if err := database.C.
		Where(&models.ChannelMember{ChannelID: channelId}).
		Find(&members).Error; err != nil {
		return nil
	}
	return lo.Map(members, func(item models.ChannelMember, index int) uint {
		return item.AccountID
	})
}

// SetTypingStatus tells everyone else in the channel that a member is
// composing; nothing is persisted.
func SetTypingStatus(channelId uint, user models.Account) error {
	member, err := EnsureMember(user.ID, channelId)
	if err != nil {
		return err
	}

	event := models.StreamEvent{
		Type: models.EventTypingStatus,
		Payload: map[string]any{
			"channel_id": channelId,
			"user_id":    user.ID,
			"member_id":  member.ID,
		},
	}

	for _, userId := range listMemberAccountIDs(channelId) {
		if userId == user.ID {
			continue
		}
		PushUser(userId, event)
	}

	return nil
}

// DealCommand dispatches one inbound gateway frame. A nil result means the
// command succeeded without a direct reply.
func DealCommand(task models.StreamEvent, user models.Account) *models.StreamEvent {
	switch task.Type {
	case "messages.send":
		var req struct {
			ChannelID uint   `json:"channel_id"`
			Content   string `json:"content"`
		}
		models.FitStruct(task.Payload, &req)

		channel, err := GetChannel(req.ChannelID)
		if err != nil {
			return lo.ToPtr(models.StreamEventFromError(err))
		}
		if _, _, err := NewChannelMessage(req.Content, user, channel); err != nil {
			return lo.ToPtr(models.StreamEventFromError(err))
		}
		return nil
	case "messages.send.direct":
		var req struct {
			ReceiverID uint   `json:"receiver_id"`
			Content    string `json:"content"`
		}
		models.FitStruct(task.Payload, &req)

		receiver, err := GetAccount(req.ReceiverID)
		if err != nil {
			return lo.ToPtr(models.StreamEventFromError(err))
		}
		if _, _, err := NewDirectMessage(req.Content, user, receiver); err != nil {
			return lo.ToPtr(models.StreamEventFromError(err))
		}
		return nil
	case "status.typing":
		var req struct {
			ChannelID uint `json:"channel_id"`
		}
		models.FitStruct(task.Payload, &req)

		if err := SetTypingStatus(req.ChannelID, user); err != nil {
			return lo.ToPtr(models.StreamEventFromError(err))
		}
		return nil
	case "channels.focus":
		var req struct {
			ChannelID uint `json:"channel_id"`
		}
		models.FitStruct(task.Payload, &req)

		member, err := EnsureMember(user.ID, req.ChannelID)
		if err != nil {
			return lo.ToPtr(models.StreamEventFromError(err))
		}
		FocusChannel(user.ID, req.ChannelID)
		SetReadingAnchor(member.ID, time.Now())
		return nil
	case "channels.unfocus":
		var req struct {
			ChannelID uint `json:"channel_id"`
		}
		models.FitStruct(task.Payload, &req)

		UnfocusChannel(user.ID, req.ChannelID)
		return nil
	default:
		return &models.StreamEvent{
			Type:    models.EventError,
			Message: fmt.Sprintf("command %s not found", task.Type),
		}
	}
}
