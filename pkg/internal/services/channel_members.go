package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/rs/zerolog/log"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

func CountChannelMember(channelId uint) (int64, error) {
	var count int64
	if err := database.C.Where(&models.ChannelMember{
		ChannelID: channelId,
	}).Model(&models.ChannelMember{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func ListChannelMember(channelId uint, take int, offset int) ([]models.ChannelMember, error) {
	if take <= 0 {
		take = -1
	}

	var members []models.ChannelMember
	if err := database.C.
		Limit(take).Offset(offset).
		Where(&models.ChannelMember{ChannelID: channelId}).
		Preload("Account").
		Find(&members).Error; err != nil {
		return members, err
	}
	return members, nil
}

func AddChannelMember(user models.Account, target models.Channel) (models.ChannelMember, error) {
	var member models.ChannelMember
	if target.IsDirect() {
		return member, fmt.Errorf("%w: direct channel membership cannot be changed", ErrValidation)
	}

	member = models.ChannelMember{
		ChannelID:  target.ID,
		AccountID:  user.ID,
		PowerLevel: models.PowerLevelMember,
	}

	if err := database.C.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return member, fmt.Errorf("%w: user is already in this channel", ErrConflict)
		}
		return member, err
	}

	invalidateChannelCache(target.ID)
	return member, nil
}

// RemoveChannelMember requires the requester to be an admin of the channel
// or the member leaving on their own.
func RemoveChannelMember(channelId, userId uint, requester models.Account) error {
	channel, err := GetChannel(channelId)
	if err != nil {
		return err
	}
	if channel.IsDirect() {
		return fmt.Errorf("%w: direct channel membership cannot be changed", ErrValidation)
	}

	if requester.ID != userId && !IsAdmin(requester.ID, channelId) {
		return fmt.Errorf("%w: no permission to remove this member", ErrUnauthorized)
	}

	var member models.ChannelMember
	if err := database.C.
		Where(&models.ChannelMember{ChannelID: channelId, AccountID: userId}).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user is not a member of this channel", ErrNotFound)
		}
		return err
	}

	// Hard delete so the composite unique index never blocks a rejoin.
	if err := database.C.Unscoped().Delete(&member).Error; err != nil {
		return err
	}

	invalidateChannelCache(channelId)
	return nil
}

// PromoteChannelAdmin is a no-op unless the requester already administers
// the channel; the target must be a member so admins stay a subset of members.
func PromoteChannelAdmin(channelId, userId uint, requester models.Account) error {
	if !IsAdmin(requester.ID, channelId) {
		return nil
	}

	member, err := GetChannelMember(userId, channelId)
	if err != nil {
		return fmt.Errorf("%w: user is not a member of this channel", ErrNotFound)
	}
	if member.IsAdmin() {
		return nil
	}

	member.PowerLevel = models.PowerLevelAdmin
	if err := database.C.Save(&member).Error; err != nil {
		return err
	}

	invalidateChannelCache(channelId)
	return nil
}

func JoinChannelByInviteCode(code string, user models.Account) (models.Channel, error) {
	var channel models.Channel
	if err := database.C.
		Where("invite_code = ?", code).
		First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return channel, fmt.Errorf("%w: invalid invite code", ErrNotFound)
		}
		return channel, err
	}

	if _, err := AddChannelMember(user, channel); err != nil {
		return channel, err
	}

	return GetChannel(channel.ID)
}

// Reading anchors are coalesced in memory and flushed on a timer instead of
// writing a row per received frame.
var (
	readingAnchorQueue = make(map[uint]time.Time)
	readingAnchorLock  sync.Mutex
)

func SetReadingAnchor(memberId uint, readAt time.Time) {
	readingAnchorLock.Lock()
	defer readingAnchorLock.Unlock()
	if val, ok := readingAnchorQueue[memberId]; !ok || readAt.After(val) {
		readingAnchorQueue[memberId] = readAt
	}
}

func FlushReadingAnchors() {
	readingAnchorLock.Lock()
	pending := readingAnchorQueue
	readingAnchorQueue = make(map[uint]time.Time)
	readingAnchorLock.Unlock()

	for id, readAt := range pending {
		if err := database.C.Model(&models.ChannelMember{}).
			Where("id = ?", id).
			Update("last_read_at", readAt).Error; err != nil {
			// Keep going; one bad row must not drop everybody else's anchor.
			log.Error().Err(err).Uint("member", id).
				Msg("An error occurred when flushing a reading anchor...")
		}
	}
}
