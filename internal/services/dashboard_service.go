package services

import (
	"time"

	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
)

// LiveCounters is the admin console's polling payload. Every field is
// computed fresh from the store on each call; nothing here is persisted
// state that could drift.
type LiveCounters struct {
	UnreadCount      int64     `json:"unread_count"`
	ActiveChatsCount int64     `json:"active_chats_count"`
	OnlineUsersCount int64     `json:"online_users_count"`
	LastUpdate       time.Time `json:"last_update"`
}

func GetLiveCounters() (*LiveCounters, error) {
	unread, err := UnreadFromUsersCount()
	if err != nil {
		return nil, err
	}

	activeChats, err := ActiveSessionCount()
	if err != nil {
		return nil, err
	}

	online, err := OnlineUserCount()
	if err != nil {
		return nil, err
	}

	return &LiveCounters{
		UnreadCount:      unread,
		ActiveChatsCount: activeChats,
		OnlineUsersCount: online,
		LastUpdate:       time.Now(),
	}, nil
}

// DashboardStats are the aggregate numbers on top of the admin dashboard.
type DashboardStats struct {
	TotalUsers      int64   `json:"total_users"`
	SubscribedUsers int64   `json:"subscribed_users"`
	OnlineUsers     int64   `json:"online_users"`
	ActiveChats     int64   `json:"active_chats"`
	UnreadMessages  int64   `json:"unread_messages"`
	TotalRevenue    float64 `json:"total_revenue"`
}

// DashboardData bundles everything the admin dashboard renders: stats,
// sanitized user list (no admin account, no password hashes), active
// subscriptions, enriched active sessions, unread and recent messages.
type DashboardData struct {
	Stats          DashboardStats        `json:"stats"`
	Users          []models.PublicUser   `json:"users"`
	Subscriptions  []models.Subscription `json:"subscriptions"`
	ActiveSessions []SessionPreview      `json:"active_sessions"`
	UnreadMessages []models.Message      `json:"unread_messages"`
	RecentMessages []models.Message      `json:"recent_messages"`
}

func GetDashboardData() (*DashboardData, error) {
	users, err := AllNonAdminUsers()
	if err != nil {
		return nil, err
	}

	subscriptions, err := AllActiveSubscriptions()
	if err != nil {
		return nil, err
	}

	activeSessions, err := ActiveSessionPreviews()
	if err != nil {
		return nil, err
	}

	unreadMessages, err := UnreadFromUsers()
	if err != nil {
		return nil, err
	}

	recentMessages, err := RecentMessages(20)
	if err != nil {
		return nil, err
	}

	var subscribed, online int64
	publicUsers := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		if u.HasSubscription {
			subscribed++
		}
		if u.IsOnline {
			online++
		}
		publicUsers = append(publicUsers, u.Public())
	}

	var revenue float64
	for _, sub := range subscriptions {
		revenue += sub.Amount
	}

	var totalUsers int64
	if err := database.DB.Model(&models.User{}).Where("is_admin = ?", false).Count(&totalUsers).Error; err != nil {
		return nil, err
	}

	return &DashboardData{
		Stats: DashboardStats{
			TotalUsers:      totalUsers,
			SubscribedUsers: subscribed,
			OnlineUsers:     online,
			ActiveChats:     int64(len(activeSessions)),
			UnreadMessages:  int64(len(unreadMessages)),
			TotalRevenue:    revenue,
		},
		Users:          publicUsers,
		Subscriptions:  subscriptions,
		ActiveSessions: activeSessions,
		UnreadMessages: unreadMessages,
		RecentMessages: recentMessages,
	}, nil
}
