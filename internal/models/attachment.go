package models

import "time"

// Attachment binds an uploaded blob to its placeholder message. The stored
// name is the serve capability; the blob lives on disk at Path. Expired
// attachments are removed lazily on serve or by the periodic sweep.
type Attachment struct {
	ID           uint   `gorm:"primarykey"`
	MessageID    uint   `gorm:"index;not null"`
	StoredName   string `gorm:"uniqueIndex;not null"`
	OriginalName string `gorm:"not null"`
	Size         int64  `gorm:"not null"`
	MimeType     string `gorm:"not null"`
	Path         string `gorm:"not null"`
	UploadedAt   time.Time
	ExpiresAt    time.Time `gorm:"index;not null"`
}

func (a Attachment) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
