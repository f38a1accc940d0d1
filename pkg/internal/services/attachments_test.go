package services_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palaver-im/palaver/pkg/internal/services"
	"github.com/palaver-im/palaver/pkg/internal/storage"
)

func setupLocalStorage(t *testing.T) {
	t.Helper()
	viper.Set("storage.backend", storage.BackendLocal)
	viper.Set("storage.local.path", t.TempDir())
	require.NoError(t, storage.Setup())
}

// buildFileHeaders round-trips payloads through a real multipart body so the
// headers look exactly like what fiber hands us.
func buildFileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := writer.CreateFormFile("attachments", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["attachments"]
}

func TestAttachFilesRoundTrip(t *testing.T) {
	setupLocalStorage(t)

	creator := newAccount(t, "creator")
	channel, err := services.NewChannel("files", "", creator)
	require.NoError(t, err)

	payload := []byte("%PDF-1.4 pretend report")
	headers := buildFileHeaders(t, map[string][]byte{"report.pdf": payload})

	message, failures, err := services.NewChannelMessage("see attached", creator, channel, headers...)
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, message.Attachments, 1)

	attachment := message.Attachments[0]
	assert.Equal(t, "report.pdf", attachment.OriginalName)
	assert.NotEqual(t, "report.pdf", attachment.FileName)
	assert.Equal(t, storage.BackendLocal, attachment.Backend)
	assert.Equal(t, int64(len(payload)), attachment.Size)

	resolved, blob, err := services.ResolveDownload(attachment.FileName)
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, attachment.ID, resolved.ID)
	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestAttachFilesSkipsEmptyFiles(t *testing.T) {
	setupLocalStorage(t)

	creator := newAccount(t, "creator")
	channel, err := services.NewChannel("empty-files", "", creator)
	require.NoError(t, err)

	headers := buildFileHeaders(t, map[string][]byte{"hollow.txt": {}})

	message, failures, err := services.NewChannelMessage("nothing to see", creator, channel, headers...)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Empty(t, message.Attachments)
}

func TestDeleteMessageDropsAttachments(t *testing.T) {
	setupLocalStorage(t)

	creator := newAccount(t, "creator")
	channel, err := services.NewChannel("tidy", "", creator)
	require.NoError(t, err)

	headers := buildFileHeaders(t, map[string][]byte{"note.txt": []byte("gone soon")})

	message, failures, err := services.NewChannelMessage("temporary", creator, channel, headers...)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, message.Attachments, 1)
	fileName := message.Attachments[0].FileName

	require.NoError(t, services.DeleteMessage(message.ID, creator))

	_, _, err = services.ResolveDownload(fileName)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestResolveDownloadUnknownName(t *testing.T) {
	setupLocalStorage(t)

	_, _, err := services.ResolveDownload("no-such-blob.bin")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
