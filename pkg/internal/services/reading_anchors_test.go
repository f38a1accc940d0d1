package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palaver-im/palaver/pkg/internal/services"
)

func TestReadingAnchorFlush(t *testing.T) {
	creator := newAccount(t, "creator")
	reader := newAccount(t, "reader")

	channel, err := services.NewChannel("anchors", "", creator)
	require.NoError(t, err)
	readerMember, err := services.AddChannelMember(reader, channel)
	require.NoError(t, err)
	creatorMember, err := services.GetChannelMember(creator.ID, channel.ID)
	require.NoError(t, err)

	readAt := time.Now().Add(-time.Minute).UTC()
	services.SetReadingAnchor(creatorMember.ID, readAt)
	services.SetReadingAnchor(readerMember.ID, readAt)

	// An older anchor never regresses a queued newer one.
	services.SetReadingAnchor(creatorMember.ID, readAt.Add(-time.Hour))

	services.FlushReadingAnchors()

	for _, accountId := range []uint{creator.ID, reader.ID} {
		member, err := services.GetChannelMember(accountId, channel.ID)
		require.NoError(t, err)
		require.NotNil(t, member.LastReadAt)
		assert.WithinDuration(t, readAt, *member.LastReadAt, time.Second)
	}

	// The queue drains on flush; a second run writes nothing new.
	services.FlushReadingAnchors()
}
