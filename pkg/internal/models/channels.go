package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type ChannelType = uint8

const (
	ChannelTypeGroup = ChannelType(iota)
	ChannelTypeDirect
)

type Channel struct {
	BaseModel

	// Name uniqueness only applies to group channels; direct channels get a
	// display name derived from their participants.
	Name        string      `json:"name" gorm:"uniqueIndex:uni_channels_name,where:type = 0"`
	Description string      `json:"description"`
	Type        ChannelType `json:"type"`
	AccountID   uint        `json:"account_id"`
	Account     Account     `json:"account"`

	// Only group channels carry an invite code; stable once assigned.
	InviteCode *string `json:"invite_code,omitempty" gorm:"uniqueIndex"`

	// Canonical order-independent pair key, present on direct channels only.
	// The unique index is what guarantees one channel per user pair.
	DirectKey     *string                   `json:"-" gorm:"uniqueIndex"`
	DirectMembers datatypes.JSONSlice[uint] `json:"direct_members,omitempty"`

	LastMessageSeq uint64 `json:"-"`

	Members  []ChannelMember `json:"members"`
	Messages []Message       `json:"messages"`
}

func (v Channel) IsDirect() bool {
	return v.Type == ChannelTypeDirect
}

func (v Channel) DisplayText() string {
	if v.IsDirect() {
		return "DM"
	}
	return fmt.Sprintf("#%s", v.Name)
}

const (
	PowerLevelMember = 0
	PowerLevelAdmin  = 50
	PowerLevelOwner  = 100
)

type NotifyLevel = int8

const (
	NotifyLevelAll = NotifyLevel(iota)
	NotifyLevelMentioned
	NotifyLevelNone
)

type ChannelMember struct {
	BaseModel

	ChannelID uint    `json:"channel_id" gorm:"uniqueIndex:idx_channel_account"`
	AccountID uint    `json:"account_id" gorm:"uniqueIndex:idx_channel_account"`
	Channel   Channel `json:"channel"`
	Account   Account `json:"account"`

	PowerLevel int         `json:"power_level"`
	Notify     NotifyLevel `json:"notify"`
	LastReadAt *time.Time  `json:"last_read_at"`
}

func (v ChannelMember) IsAdmin() bool {
	return v.PowerLevel >= PowerLevelAdmin
}
