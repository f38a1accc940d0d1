package services_test

import (
	"testing"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/palaver-im/palaver/pkg/internal/services"
)

func TestConnectionRegistry(t *testing.T) {
	user := newAccount(t, "wired")
	assert.False(t, services.CheckOnline(user.ID))

	// Two tabs from the same account; the user stays online until both
	// connections are gone.
	first := &websocket.Conn{}
	second := &websocket.Conn{}
	services.ClientRegister(user, first)
	services.ClientRegister(user, second)
	assert.True(t, services.CheckOnline(user.ID))

	services.ClientUnregister(user, first)
	assert.True(t, services.CheckOnline(user.ID))

	services.ClientUnregister(user, second)
	assert.False(t, services.CheckOnline(user.ID))

	// Unregistering again is harmless.
	services.ClientUnregister(user, second)
	assert.False(t, services.CheckOnline(user.ID))
}

func TestChannelFocus(t *testing.T) {
	user := newAccount(t, "focused")
	other := newAccount(t, "elsewhere")

	assert.False(t, services.CheckFocused(user.ID, 1))

	services.FocusChannel(user.ID, 1)
	services.FocusChannel(user.ID, 2)
	services.FocusChannel(other.ID, 1)
	assert.True(t, services.CheckFocused(user.ID, 1))
	assert.True(t, services.CheckFocused(user.ID, 2))
	assert.True(t, services.CheckFocused(other.ID, 1))

	services.UnfocusChannel(user.ID, 1)
	assert.False(t, services.CheckFocused(user.ID, 1))
	assert.True(t, services.CheckFocused(user.ID, 2))
	assert.True(t, services.CheckFocused(other.ID, 1))

	services.UnfocusAll(user.ID)
	assert.False(t, services.CheckFocused(user.ID, 2))
	assert.True(t, services.CheckFocused(other.ID, 1))

	services.UnfocusAll(other.ID)
}
