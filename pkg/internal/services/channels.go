package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"

	localCache "github.com/palaver-im/palaver/pkg/internal/cache"
	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

const inviteCodeAttempts = 5

type channelIdentityCacheEntry struct {
	Channel models.Channel
	Member  models.ChannelMember
}

func GetChannelIdentityCacheKey(channelId, userId uint) string {
	return fmt.Sprintf("channel-identity-%d#%d", channelId, userId)
}

func cacheChannelIdentity(channel models.Channel, member models.ChannelMember, userId uint) {
	if localCache.S == nil {
		return
	}

	marshal := marshaler.New(cache.New[any](localCache.S))
	_ = marshal.Set(
		context.Background(),
		GetChannelIdentityCacheKey(channel.ID, userId),
		channelIdentityCacheEntry{channel, member},
		store.WithTags([]string{
			"channel-identity",
			fmt.Sprintf("channel#%d", channel.ID),
			fmt.Sprintf("user#%d", userId),
		}),
	)
}

func invalidateChannelCache(channelId uint) {
	if localCache.S == nil {
		return
	}

	marshal := marshaler.New(cache.New[any](localCache.S))
	_ = marshal.Invalidate(
		context.Background(),
		store.WithInvalidateTags([]string{fmt.Sprintf("channel#%d", channelId)}),
	)
}

// GetChannelIdentity resolves a channel together with the caller's
// membership in it, through the cache when one is configured.
func GetChannelIdentity(channelId, userId uint) (models.Channel, models.ChannelMember, error) {
	if localCache.S != nil {
		marshal := marshaler.New(cache.New[any](localCache.S))
		if val, err := marshal.Get(
			context.Background(),
			GetChannelIdentityCacheKey(channelId, userId),
			new(channelIdentityCacheEntry),
		); err == nil {
			entry := val.(*channelIdentityCacheEntry)
			return entry.Channel, entry.Member, nil
		}
	}

	channel, err := GetChannel(channelId)
	if err != nil {
		return channel, models.ChannelMember{}, err
	}
	member, err := EnsureMember(userId, channelId)
	if err != nil {
		return channel, member, err
	}

	cacheChannelIdentity(channel, member, userId)
	return channel, member, nil
}

func GetChannel(id uint) (models.Channel, error) {
	var channel models.Channel
	if err := database.C.
		Where("id = ?", id).
		Preload("Members").
		First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return channel, fmt.Errorf("%w: channel %d", ErrNotFound, id)
		}
		return channel, err
	}
	return channel, nil
}

func GetChannelWithName(name string) (models.Channel, error) {
	var channel models.Channel
	if err := database.C.
		Where("name = ?", name).
		Preload("Members").
		First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return channel, fmt.Errorf("%w: channel %s", ErrNotFound, name)
		}
		return channel, err
	}
	return channel, nil
}

func ListChannel(take int, offset int) ([]models.Channel, error) {
	var channels []models.Channel
	if err := database.C.
		Where("type = ?", models.ChannelTypeGroup).
		Limit(take).Offset(offset).
		Find(&channels).Error; err != nil {
		return channels, err
	}
	return channels, nil
}

// ListChannelWithUser derives the user-side membership view by querying the
// authoritative channel_members table; there is no second mutable copy.
func ListChannelWithUser(user models.Account, kinds ...models.ChannelType) ([]models.Channel, error) {
	var members []models.ChannelMember
	if err := database.C.
		Where(&models.ChannelMember{AccountID: user.ID}).
		Find(&members).Error; err != nil {
		return nil, err
	}

	idx := lo.Map(members, func(item models.ChannelMember, index int) uint {
		return item.ChannelID
	})

	tx := database.C.Where("id IN ?", idx).Preload("Members")
	if len(kinds) > 0 {
		tx = tx.Where("type = ?", kinds[0])
	}

	var channels []models.Channel
	if err := tx.Find(&channels).Error; err != nil {
		return channels, err
	}
	return channels, nil
}

func NewChannel(name, description string, creator models.Account) (models.Channel, error) {
	var channel models.Channel
	if len(strings.TrimSpace(name)) == 0 {
		return channel, fmt.Errorf("%w: channel name cannot be blank", ErrValidation)
	}

	code, err := NewInviteCode()
	if err != nil {
		return channel, err
	}

	channel = models.Channel{
		Name:        name,
		Description: description,
		Type:        models.ChannelTypeGroup,
		AccountID:   creator.ID,
		InviteCode:  &code,
		Members: []models.ChannelMember{
			{AccountID: creator.ID, PowerLevel: models.PowerLevelOwner},
		},
	}

	if err := database.C.Create(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return channel, fmt.Errorf("%w: a channel with this name already exists", ErrConflict)
		}
		return channel, err
	}

	return channel, nil
}

func EditChannel(channelId uint, name, description string, requester models.Account) (models.Channel, error) {
	channel, err := GetChannel(channelId)
	if err != nil {
		return channel, err
	}
	if _, err := EnsureAdmin(requester.ID, channel.ID); err != nil {
		return channel, err
	}
	if len(strings.TrimSpace(name)) == 0 {
		return channel, fmt.Errorf("%w: channel name cannot be blank", ErrValidation)
	}

	channel.Name = name
	channel.Description = description
	if err := database.C.Save(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return channel, fmt.Errorf("%w: a channel with this name already exists", ErrConflict)
		}
		return channel, err
	}

	invalidateChannelCache(channel.ID)
	return channel, nil
}

// DeleteChannel removes the channel record, its memberships, and its
// messages. Blob deletion is best-effort; a failing store never blocks the
// metadata cascade but is reported in the logs.
func DeleteChannel(channelId uint, requester models.Account) error {
	channel, err := GetChannel(channelId)
	if err != nil {
		return err
	}
	if _, err := EnsureAdmin(requester.ID, channel.ID); err != nil {
		return err
	}

	if err := DeleteChannelAttachments(channel); err != nil {
		log.Warn().Err(err).Uint("channel", channel.ID).
			Msg("Some attachment blobs could not be removed during channel deletion...")
	}

	if err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channel.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("channel_id = ?", channel.ID).
			Delete(&models.ChannelMember{}).Error; err != nil {
			return err
		}

		// Hard delete so the unique name and invite code indexes never block
		// re-creating a channel under the same name.
		return tx.Unscoped().Delete(&channel).Error
	}); err != nil {
		return err
	}

	invalidateChannelCache(channel.ID)
	releaseChannelLock(channel.ID)
	return nil
}

// NewInviteCode draws 6-digit codes from a CSPRNG and verifies uniqueness
// before committing; the unique constraint backstops the window between
// check and insert.
func NewInviteCode() (string, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		num, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%06d", num.Int64())

		var count int64
		if err := database.C.Model(&models.Channel{}).
			Where("invite_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: unable to allocate a unique invite code", ErrConflict)
}
