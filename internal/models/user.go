package models

import "time"

type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null" json:"-"`
	IsAdmin   bool   `gorm:"not null;default:false"`

	// Display cache only. Authorization always re-derives entitlement from
	// the subscriptions table.
	HasSubscription bool `gorm:"not null;default:false"`

	// Best-effort presence, overwritten by heartbeat/login/logout.
	IsOnline bool `gorm:"not null;default:false"`
	LastSeen time.Time
}

// PublicUser is the projection safe to return to clients and to embed as a
// message sender. The password hash never leaves the store.
type PublicUser struct {
	ID       uint      `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	IsAdmin  bool      `json:"is_admin"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
	}
}
