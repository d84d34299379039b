package models

import "time"

const (
	ChatSessionStatusActive  = "active"
	ChatSessionStatusClosed  = "closed"
	ChatSessionStatusWaiting = "waiting"
)

// ChatSession is one consultation thread, owned by exactly one user for its
// entire life. Closed sessions remain queryable history.
type ChatSession struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"index;not null"`
	VehicleInfo  JSON   `gorm:"type:jsonb"`
	Status       string `gorm:"index;not null;default:'active'"`
	CreatedAt    time.Time
	LastActivity time.Time
}
