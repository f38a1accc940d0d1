package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
	"github.com/palaver-im/palaver/pkg/internal/storage"
)

// AttachmentFailure reports one file that could not be stored. The owning
// message stays committed either way; partial attachment sets are returned
// to the caller instead of being silently accepted or rolled back.
type AttachmentFailure struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// AttachFiles runs strictly after the message row exists: blobs first, then
// the attachment record, per file.
func AttachFiles(message *models.Message, files []*multipart.FileHeader) []AttachmentFailure {
	var failures []AttachmentFailure
	if len(files) == 0 {
		return failures
	}

	driver, err := storage.Default()
	if err != nil {
		for _, file := range files {
			failures = append(failures, AttachmentFailure{file.Filename, err.Error()})
		}
		return failures
	}

	for _, file := range files {
		if file.Size == 0 {
			continue
		}

		attachment, err := storeFile(driver, file, message.ID)
		if err != nil {
			log.Warn().Err(err).Str("file", file.Filename).Uint("message", message.ID).
				Msg("An error occurred when storing an attachment...")
			failures = append(failures, AttachmentFailure{file.Filename, err.Error()})
			continue
		}

		message.Attachments = append(message.Attachments, attachment)
	}

	return failures
}

func storeFile(driver storage.Driver, file *multipart.FileHeader, messageId uint) (models.Attachment, error) {
	var attachment models.Attachment

	src, err := file.Open()
	if err != nil {
		return attachment, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer src.Close()

	// Storage name is opaque; the raw client-provided name never reaches a
	// backend path.
	name := uuid.NewString() + filepath.Ext(file.Filename)
	contentType := file.Header.Get("Content-Type")

	if err := driver.Put(context.Background(), name, src, file.Size, contentType); err != nil {
		return attachment, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	attachment = models.Attachment{
		FileName:     name,
		OriginalName: filepath.Base(file.Filename),
		ContentType:  contentType,
		Size:         file.Size,
		Backend:      storage.DefaultBackend(),
		MessageID:    messageId,
	}

	if err := database.C.Create(&attachment).Error; err != nil {
		_ = driver.Delete(context.Background(), name)
		return attachment, err
	}

	return attachment, nil
}

// ResolveDownload maps a stored name back to its record and opens the blob.
func ResolveDownload(fileName string) (models.Attachment, io.ReadCloser, error) {
	var attachment models.Attachment
	if err := database.C.
		Where("file_name = ?", fileName).
		First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return attachment, nil, fmt.Errorf("%w: attachment %s", ErrNotFound, fileName)
		}
		return attachment, nil, err
	}

	driver, err := storage.For(attachment.Backend)
	if err != nil {
		return attachment, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	out, err := driver.Get(context.Background(), attachment.FileName)
	if err != nil {
		return attachment, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return attachment, out, nil
}

// DeleteMessageAttachments drops attachment rows and their blobs. Blob
// failures are joined into the returned error but do not stop the cascade.
func DeleteMessageAttachments(message models.Message) error {
	var attachments []models.Attachment
	if err := database.C.
		Where("message_id = ?", message.ID).
		Find(&attachments).Error; err != nil {
		return err
	}

	return deleteAttachments(attachments)
}

func DeleteChannelAttachments(channel models.Channel) error {
	prefix := viper.GetString("database.prefix")
	var attachments []models.Attachment
	if err := database.C.
		Joins(fmt.Sprintf(
			"JOIN %smessages AS m ON m.id = %sattachments.message_id",
			prefix, prefix,
		)).
		Where("m.channel_id = ?", channel.ID).
		Find(&attachments).Error; err != nil {
		return err
	}

	return deleteAttachments(attachments)
}

func deleteAttachments(attachments []models.Attachment) error {
	var failures []error
	for _, attachment := range attachments {
		if driver, err := storage.For(attachment.Backend); err != nil {
			failures = append(failures, err)
		} else if err := driver.Delete(context.Background(), attachment.FileName); err != nil {
			failures = append(failures, fmt.Errorf("%s: %v", attachment.FileName, err))
		}

		if err := database.C.Unscoped().Delete(&attachment).Error; err != nil {
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %v", ErrStorage, errors.Join(failures...))
	}
	return nil
}
