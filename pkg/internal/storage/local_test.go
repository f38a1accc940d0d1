package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palaver-im/palaver/pkg/internal/storage"
)

func TestLocalDriver(t *testing.T) {
	driver := &storage.LocalDriver{Root: t.TempDir()}
	ctx := context.Background()
	payload := []byte("hello blobs")

	require.NoError(t, driver.Put(ctx, "greeting.txt", bytes.NewReader(payload), int64(len(payload)), "text/plain"))

	blob, err := driver.Get(ctx, "greeting.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	require.NoError(t, blob.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, driver.Delete(ctx, "greeting.txt"))
	_, err = driver.Get(ctx, "greeting.txt")
	assert.True(t, os.IsNotExist(err))

	// Deleting a blob that is already gone is not an error.
	assert.NoError(t, driver.Delete(ctx, "greeting.txt"))
}
