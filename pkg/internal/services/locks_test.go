package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

func TestChannelLockReleasedOnDelete(t *testing.T) {
	account := models.Account{Name: "lock-keeper", Email: "lock-keeper@example.com"}
	require.NoError(t, database.C.Create(&account).Error)

	channel, err := NewChannel("lock-release", "", account)
	require.NoError(t, err)

	lockChannel(channel.ID)
	_, ok := channelLocks.Load(channel.ID)
	require.True(t, ok)

	require.NoError(t, DeleteChannel(channel.ID, account))

	// Deleted channels leave no lock entry behind.
	_, ok = channelLocks.Load(channel.ID)
	assert.False(t, ok)
}
