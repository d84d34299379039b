package models

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// Subscription is a time-boxed access grant created only after the payment
// processor confirmed the order. Renewal creates a new record; rows are
// never mutated after creation.
type Subscription struct {
	ID          uint    `gorm:"primarykey"`
	UserID      uint    `gorm:"index;not null"`
	Amount      float64 `gorm:"type:decimal(10,2);not null"`
	Status      string  `gorm:"not null;default:'active'"`
	PurchasedAt time.Time
	ExpiresAt   time.Time `gorm:"index;not null"`
}
