package services

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

// DirectChannelKey derives the canonical order-independent lookup key for a
// user pair, so (A,B) and (B,A) always resolve to the same channel row.
func DirectChannelKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func GetDirectChannel(a, b uint) (models.Channel, error) {
	var channel models.Channel
	if err := database.C.
		Where("direct_key = ?", DirectChannelKey(a, b)).
		Preload("Members").
		First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return channel, fmt.Errorf("%w: no direct channel for this pair", ErrNotFound)
		}
		return channel, err
	}
	return channel, nil
}

// GetOrCreateDirectChannel is idempotent and symmetric. Creation leans on
// the unique index over the canonical key: when both parties race, the
// loser hits a duplicated-key error and re-reads the winner's row.
func GetOrCreateDirectChannel(user, other models.Account) (models.Channel, error) {
	if user.ID == other.ID {
		return models.Channel{}, fmt.Errorf("%w: cannot open a direct channel with yourself", ErrValidation)
	}

	if channel, err := GetDirectChannel(user.ID, other.ID); err == nil {
		return channel, nil
	} else if !errors.Is(err, ErrNotFound) {
		return channel, err
	}

	key := DirectChannelKey(user.ID, other.ID)
	channel := models.Channel{
		Name:          fmt.Sprintf("DM: %s & %s", user.Name, other.Name),
		Type:          models.ChannelTypeDirect,
		AccountID:     user.ID,
		DirectKey:     &key,
		DirectMembers: datatypes.NewJSONSlice([]uint{user.ID, other.ID}),
		Members: []models.ChannelMember{
			{AccountID: user.ID},
			{AccountID: other.ID},
		},
	}

	if err := database.C.Create(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return GetDirectChannel(user.ID, other.ID)
		}
		return channel, err
	}

	return channel, nil
}

func ListDirectChannelWithUser(user models.Account) ([]models.Channel, error) {
	return ListChannelWithUser(user, models.ChannelTypeDirect)
}
