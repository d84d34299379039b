package models

import "time"

const (
	SenderTypeUser  = "user"
	SenderTypeAdmin = "admin"
	SenderTypeBot   = "bot"
)

// Message is one turn in a session. Rows are append-only; the only mutation
// ever applied is flipping IsRead.
type Message struct {
	ID         uint      `gorm:"primarykey"`
	SessionID  uint      `gorm:"index;not null"`
	SenderID   *uint     `gorm:"index"` // nil for bot/system turns
	SenderType string    `gorm:"not null"`
	Content    string    `gorm:"type:text;not null"`
	IsRead     bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"index"`
}
