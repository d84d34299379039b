package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/wiktoriatopajew/pipa/config"
	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttachmentTTL is how long an uploaded file stays servable.
const AttachmentTTL = 30 * 24 * time.Hour

const (
	maxImageSize int64 = 30 << 20  // 30 MiB
	maxVideoSize int64 = 150 << 20 // 150 MiB
)

// attachmentSizeLimits doubles as the mime allow-list.
var attachmentSizeLimits = map[string]int64{
	"image/jpeg":      maxImageSize,
	"image/png":       maxImageSize,
	"image/gif":       maxImageSize,
	"image/webp":      maxImageSize,
	"video/mp4":       maxVideoSize,
	"video/webm":      maxVideoSize,
	"video/quicktime": maxVideoSize,
	"video/x-msvideo": maxVideoSize,
}

var (
	ErrAttachmentInvalid  = errors.New("file type not allowed or file too large")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// UploadAttachment stores the blob, then creates the placeholder message and
// the attachment record in one transaction. Any failure after the blob write
// removes the blob; a transaction failure leaves neither message nor record,
// so no message ever points at a missing file.
func UploadAttachment(session models.ChatSession, sender models.User, src io.Reader, originalName, mimeType string, declaredSize int64) (*models.Message, *models.Attachment, error) {
	limit, allowed := attachmentSizeLimits[mimeType]
	if !allowed {
		return nil, nil, ErrAttachmentInvalid
	}
	if declaredSize > limit {
		return nil, nil, ErrAttachmentInvalid
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, nil, err
	}

	storedName := uuid.New().String() + filepath.Ext(filepath.Base(originalName))
	blobPath := filepath.Join(cfg.UploadDir, storedName)

	written, err := writeBlob(blobPath, src, limit)
	if err != nil {
		os.Remove(blobPath)
		return nil, nil, err
	}

	senderType := models.SenderTypeUser
	if sender.IsAdmin {
		senderType = models.SenderTypeAdmin
	}

	now := time.Now()
	senderID := sender.ID
	message := &models.Message{
		SessionID:  session.ID,
		SenderID:   &senderID,
		SenderType: senderType,
		Content:    fmt.Sprintf("[File: %s]", filepath.Base(originalName)),
		IsRead:     senderType == models.SenderTypeAdmin,
	}
	attachment := &models.Attachment{
		StoredName:   storedName,
		OriginalName: filepath.Base(originalName),
		Size:         written,
		MimeType:     mimeType,
		Path:         blobPath,
		UploadedAt:   now,
		ExpiresAt:    now.Add(AttachmentTTL),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		attachment.MessageID = message.ID
		if err := tx.Create(attachment).Error; err != nil {
			return err
		}

		return tx.Model(&models.ChatSession{}).
			Where("id = ?", session.ID).
			Update("last_activity", now).Error
	})
	if err != nil {
		os.Remove(blobPath)
		return nil, nil, err
	}

	return message, attachment, nil
}

// writeBlob copies at most limit bytes. One extra byte is read to detect a
// stream that lied about its size.
func writeBlob(path string, src io.Reader, limit int64) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return written, err
	}
	if written > limit {
		return written, ErrAttachmentInvalid
	}

	return written, nil
}

// ServeAttachment resolves a stored filename to its record. Expired
// attachments are deleted on the spot and reported as not found, so expiry
// is enforced even between sweeps.
func ServeAttachment(storedName string) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := database.DB.Where("stored_name = ?", storedName).First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}

	if attachment.Expired(time.Now()) {
		if err := DeleteAttachment(attachment); err != nil {
			zap.L().Warn("failed to delete expired attachment on serve",
				zap.Uint("attachment_id", attachment.ID), zap.Error(err))
		}
		return nil, ErrAttachmentNotFound
	}

	return &attachment, nil
}

// DeleteAttachment removes the blob and the record. Both halves are
// delete-if-present, so the lazy serve path and the periodic sweep can race
// on the same attachment without either failing.
func DeleteAttachment(attachment models.Attachment) error {
	if err := os.Remove(attachment.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return database.DB.Delete(&models.Attachment{}, attachment.ID).Error
}

// SweepExpiredAttachments deletes every attachment past its expiry. One bad
// attachment does not stop the rest; failures are logged and skipped.
func SweepExpiredAttachments() (int, error) {
	var expired []models.Attachment
	if err := database.DB.Where("expires_at < ?", time.Now()).Find(&expired).Error; err != nil {
		return 0, err
	}

	removed := 0
	for _, attachment := range expired {
		if err := DeleteAttachment(attachment); err != nil {
			zap.L().Warn("sweep: failed to delete attachment",
				zap.Uint("attachment_id", attachment.ID),
				zap.String("path", attachment.Path),
				zap.Error(err))
			continue
		}
		removed++
	}

	return removed, nil
}
