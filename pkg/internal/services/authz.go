package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

// Membership predicates. Every mutating operation consults these instead of
// re-implementing its own checks.

func GetChannelMember(userId, channelId uint) (models.ChannelMember, error) {
	var member models.ChannelMember
	if err := database.C.
		Where(&models.ChannelMember{AccountID: userId, ChannelID: channelId}).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return member, fmt.Errorf("%w: not a member of channel %d", ErrUnauthorized, channelId)
		}
		return member, err
	}
	return member, nil
}

func IsMember(userId, channelId uint) bool {
	_, err := GetChannelMember(userId, channelId)
	return err == nil
}

func IsAdmin(userId, channelId uint) bool {
	member, err := GetChannelMember(userId, channelId)
	return err == nil && member.IsAdmin()
}

func EnsureMember(userId, channelId uint) (models.ChannelMember, error) {
	return GetChannelMember(userId, channelId)
}

func EnsureAdmin(userId, channelId uint) (models.ChannelMember, error) {
	member, err := GetChannelMember(userId, channelId)
	if err != nil {
		return member, err
	}
	if !member.IsAdmin() {
		return member, fmt.Errorf("%w: not an admin of channel %d", ErrUnauthorized, channelId)
	}
	return member, nil
}
