package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandFrame(t *testing.T) {
	first, err := parseCommandFrame([]byte(`{"type":"channels.focus","payload":{"channel_id":7}}`))
	require.NoError(t, err)
	assert.Equal(t, "channels.focus", first.Type)
	assert.NotNil(t, first.Payload)

	// A later frame without a payload must not inherit the previous one's.
	second, err := parseCommandFrame([]byte(`{"type":"channels.unfocus"}`))
	require.NoError(t, err)
	assert.Equal(t, "channels.unfocus", second.Type)
	assert.Nil(t, second.Payload)

	_, err = parseCommandFrame([]byte("not json"))
	assert.Error(t, err)
}
