package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palaver-im/palaver/pkg/internal/models"
	"github.com/palaver-im/palaver/pkg/internal/services"
)

func TestNewChannelInvariants(t *testing.T) {
	creator := newAccount(t, "creator")

	channel, err := services.NewChannel("general", "the town square", creator)
	require.NoError(t, err)

	assert.Equal(t, models.ChannelTypeGroup, channel.Type)
	assert.Equal(t, creator.ID, channel.AccountID)
	require.NotNil(t, channel.InviteCode)
	assert.Regexp(t, `^\d{6}$`, *channel.InviteCode)

	// Creator is a member and an admin right away.
	member, err := services.GetChannelMember(creator.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, member.IsAdmin())
	assert.True(t, services.IsMember(creator.ID, channel.ID))
	assert.True(t, services.IsAdmin(creator.ID, channel.ID))
}

func TestNewChannelValidation(t *testing.T) {
	creator := newAccount(t, "creator")

	_, err := services.NewChannel("   ", "", creator)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestNewChannelDuplicateName(t *testing.T) {
	creator := newAccount(t, "creator")

	_, err := services.NewChannel("dup-check", "", creator)
	require.NoError(t, err)

	_, err = services.NewChannel("dup-check", "", creator)
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestEditChannelRequiresAdmin(t *testing.T) {
	creator := newAccount(t, "creator")
	peasant := newAccount(t, "peasant")

	channel, err := services.NewChannel("rename-me", "", creator)
	require.NoError(t, err)
	_, err = services.AddChannelMember(peasant, channel)
	require.NoError(t, err)

	_, err = services.EditChannel(channel.ID, "renamed", "", peasant)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	edited, err := services.EditChannel(channel.ID, "renamed", "now with words", creator)
	require.NoError(t, err)
	assert.Equal(t, "renamed", edited.Name)

	_, err = services.EditChannel(9_999_999, "ghost", "", creator)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestJoinChannelByInviteCode(t *testing.T) {
	creator := newAccount(t, "creator")
	joiner := newAccount(t, "joiner")

	channel, err := services.NewChannel("team", "", creator)
	require.NoError(t, err)

	joined, err := services.JoinChannelByInviteCode(*channel.InviteCode, joiner)
	require.NoError(t, err)
	assert.Equal(t, channel.ID, joined.ID)
	assert.True(t, services.IsMember(joiner.ID, channel.ID))
	assert.False(t, services.IsAdmin(joiner.ID, channel.ID))

	// A second attempt with the same code is a conflict.
	_, err = services.JoinChannelByInviteCode(*channel.InviteCode, joiner)
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = services.JoinChannelByInviteCode("000000", newAccount(t, "stranger"))
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRemoveChannelMemberAuthorization(t *testing.T) {
	creator := newAccount(t, "creator")
	target := newAccount(t, "target")
	bystander := newAccount(t, "bystander")

	channel, err := services.NewChannel("bouncer", "", creator)
	require.NoError(t, err)
	_, err = services.AddChannelMember(target, channel)
	require.NoError(t, err)
	_, err = services.AddChannelMember(bystander, channel)
	require.NoError(t, err)

	// A plain member cannot remove somebody else.
	err = services.RemoveChannelMember(channel.ID, target.ID, bystander)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Leaving on your own is fine.
	require.NoError(t, services.RemoveChannelMember(channel.ID, bystander.ID, bystander))
	assert.False(t, services.IsMember(bystander.ID, channel.ID))

	// Admins can remove anyone, and the seat can be re-taken afterwards.
	require.NoError(t, services.RemoveChannelMember(channel.ID, target.ID, creator))
	assert.False(t, services.IsMember(target.ID, channel.ID))
	_, err = services.AddChannelMember(target, channel)
	require.NoError(t, err)
}

func TestPromoteChannelAdmin(t *testing.T) {
	creator := newAccount(t, "creator")
	target := newAccount(t, "target")
	peasant := newAccount(t, "peasant")

	channel, err := services.NewChannel("ladder", "", creator)
	require.NoError(t, err)
	_, err = services.AddChannelMember(target, channel)
	require.NoError(t, err)
	_, err = services.AddChannelMember(peasant, channel)
	require.NoError(t, err)

	// Non-admin requester: silently no effect.
	require.NoError(t, services.PromoteChannelAdmin(channel.ID, target.ID, peasant))
	assert.False(t, services.IsAdmin(target.ID, channel.ID))

	require.NoError(t, services.PromoteChannelAdmin(channel.ID, target.ID, creator))
	assert.True(t, services.IsAdmin(target.ID, channel.ID))

	// Admins stay a subset of members.
	err = services.PromoteChannelAdmin(channel.ID, newAccount(t, "outsider").ID, creator)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteChannelCascades(t *testing.T) {
	creator := newAccount(t, "creator")
	member := newAccount(t, "member")

	channel, err := services.NewChannel("doomed", "", creator)
	require.NoError(t, err)
	_, err = services.AddChannelMember(member, channel)
	require.NoError(t, err)
	_, _, err = services.NewChannelMessage("so long", creator, channel)
	require.NoError(t, err)

	err = services.DeleteChannel(channel.ID, member)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	require.NoError(t, services.DeleteChannel(channel.ID, creator))

	// The channel is gone for every former member's view.
	_, err = services.GetChannel(channel.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	for _, user := range []models.Account{creator, member} {
		channels, err := services.ListChannelWithUser(user)
		require.NoError(t, err)
		for _, item := range channels {
			assert.NotEqual(t, channel.ID, item.ID)
		}
	}
}

func TestRecreateChannelAfterDelete(t *testing.T) {
	creator := newAccount(t, "creator")

	channel, err := services.NewChannel("phoenix", "", creator)
	require.NoError(t, err)
	require.NoError(t, services.DeleteChannel(channel.ID, creator))

	// The name frees up immediately, not after a retention purge.
	again, err := services.NewChannel("phoenix", "", creator)
	require.NoError(t, err)
	assert.NotEqual(t, channel.ID, again.ID)
}

func TestNewInviteCodeShape(t *testing.T) {
	code, err := services.NewInviteCode()
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, code)
}
