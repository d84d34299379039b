package services

import (
	"errors"
	"sort"
	"time"

	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrForbidden       = errors.New("forbidden")
)

// SessionPreview is a session enriched with the derived fields the chat
// lists poll for.
type SessionPreview struct {
	Session      models.ChatSession `json:"session"`
	User         *models.PublicUser `json:"user,omitempty"`
	LastMessage  *models.Message    `json:"last_message,omitempty"`
	MessageCount int64              `json:"message_count"`
	UnreadCount  int64              `json:"unread_count"`
}

// EffectiveLastActivity tolerates clock skew between session bookkeeping and
// message inserts: the newest of last_activity, created_at and the last
// message's created_at wins.
func (p SessionPreview) EffectiveLastActivity() time.Time {
	t := p.Session.LastActivity
	if p.Session.CreatedAt.After(t) {
		t = p.Session.CreatedAt
	}
	if p.LastMessage != nil && p.LastMessage.CreatedAt.After(t) {
		t = p.LastMessage.CreatedAt
	}
	return t
}

// CreateChatSession opens a consultation thread for the user. Entitlement is
// checked by the caller's route gate; ownership is fixed here for the life
// of the session.
func CreateChatSession(userID uint, vehicleInfo models.JSON) (*models.ChatSession, error) {
	session := &models.ChatSession{
		UserID:       userID,
		VehicleInfo:  vehicleInfo,
		Status:       models.ChatSessionStatusActive,
		LastActivity: time.Now(),
	}

	if err := database.DB.Create(session).Error; err != nil {
		return nil, err
	}

	return session, nil
}

func GetChatSession(id uint) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := database.DB.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// AuthorizeSessionAccess allows the owning user or an admin, nobody else.
// Callers should surface the failure as a plain not-found so foreign
// sessions are indistinguishable from absent ones.
func AuthorizeSessionAccess(user models.User, session models.ChatSession) error {
	if user.IsAdmin || session.UserID == user.ID {
		return nil
	}
	return ErrForbidden
}

// UserSessionPreviews returns the user's own sessions enriched and sorted by
// effective last activity, newest first. Unread counts the other party's
// unseen messages; the user's own sends never count.
func UserSessionPreviews(userID uint) ([]SessionPreview, error) {
	var sessions []models.ChatSession
	if err := database.DB.Where("user_id = ?", userID).Find(&sessions).Error; err != nil {
		return nil, err
	}

	return enrichSessions(sessions, models.SenderTypeUser, false)
}

// ActiveSessionPreviews returns every active session across all users for
// the admin console, with the owning user attached. Unread here counts
// user-authored unseen messages.
func ActiveSessionPreviews() ([]SessionPreview, error) {
	var sessions []models.ChatSession
	if err := database.DB.Where("status = ?", models.ChatSessionStatusActive).Find(&sessions).Error; err != nil {
		return nil, err
	}

	return enrichSessions(sessions, models.SenderTypeAdmin, true)
}

// ActiveSessionCount counts sessions currently marked active.
func ActiveSessionCount() (int64, error) {
	var count int64
	err := database.DB.Model(&models.ChatSession{}).
		Where("status = ?", models.ChatSessionStatusActive).
		Count(&count).Error
	return count, err
}

func enrichSessions(sessions []models.ChatSession, viewerType string, withUser bool) ([]SessionPreview, error) {
	previews := make([]SessionPreview, 0, len(sessions))

	for _, session := range sessions {
		preview := SessionPreview{Session: session}

		var last models.Message
		err := database.DB.Where("session_id = ?", session.ID).
			Order("created_at DESC, id DESC").
			First(&last).Error
		if err == nil {
			preview.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if err := database.DB.Model(&models.Message{}).
			Where("session_id = ?", session.ID).
			Count(&preview.MessageCount).Error; err != nil {
			return nil, err
		}

		unread, err := sessionUnreadCount(session.ID, viewerType)
		if err != nil {
			return nil, err
		}
		preview.UnreadCount = unread

		if withUser {
			if user, err := FindUserByID(session.UserID); err == nil {
				public := user.Public()
				preview.User = &public
			}
		}

		previews = append(previews, preview)
	}

	sort.SliceStable(previews, func(i, j int) bool {
		return previews[i].EffectiveLastActivity().After(previews[j].EffectiveLastActivity())
	})

	return previews, nil
}
