package services

import (
	"time"

	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"go.uber.org/zap"
)

// MessageView is a message enriched with its sender projection and any
// attachments, as returned to polling clients.
type MessageView struct {
	models.Message
	Sender      *models.PublicUser  `json:"sender,omitempty"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

// AppendMessage appends one turn to a session and bumps the session's
// last_activity. Admin-authored messages are inserted already read: the
// admin does not need to "read" their own send, and the unread predicates
// downstream are always scoped to messages not authored by the reader.
func AppendMessage(sessionID uint, senderID *uint, senderType, content string) (*models.Message, error) {
	message := &models.Message{
		SessionID:  sessionID,
		SenderID:   senderID,
		SenderType: senderType,
		Content:    content,
		IsRead:     senderType == models.SenderTypeAdmin,
	}

	if err := database.DB.Create(message).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.ChatSession{}).
		Where("id = ?", sessionID).
		Update("last_activity", time.Now()).Error; err != nil {
		// The message itself is committed; a stale last_activity only degrades
		// preview sorting, so log rather than fail the send.
		zap.L().Warn("failed to bump session last_activity",
			zap.Uint("session_id", sessionID), zap.Error(err))
	}

	return message, nil
}

// FirstMessageInSession reports whether the sender has exactly one message
// in the session, i.e. the one just appended was their first. The notifier
// hook consumes this to alert staff about fresh consultations.
func FirstMessageInSession(sessionID uint, senderID uint) (bool, error) {
	var count int64
	err := database.DB.Model(&models.Message{}).
		Where("session_id = ? AND sender_id = ?", sessionID, senderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// SessionMessages returns a session's messages in insertion order (created_at
// ascending, id as tiebreaker for same-timestamp inserts), each with sender
// projection and attachments. Viewing is a read receipt: messages authored
// by the other party and still unread are flipped read as a side effect.
func SessionMessages(sessionID uint, viewerType string) ([]MessageView, error) {
	if err := markSessionReadFor(sessionID, viewerType); err != nil {
		return nil, err
	}

	var messages []models.Message
	err := database.DB.Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, message := range messages {
		view := MessageView{Message: message}

		if message.SenderID != nil {
			if sender, err := FindUserByID(*message.SenderID); err == nil {
				public := sender.Public()
				view.Sender = &public
			}
		}

		var attachments []models.Attachment
		if err := database.DB.Where("message_id = ?", message.ID).Find(&attachments).Error; err != nil {
			return nil, err
		}
		if len(attachments) > 0 {
			view.Attachments = attachments
		}

		views = append(views, view)
	}

	return views, nil
}

// markSessionReadFor flips unread messages from the opposite party. A user
// viewer consumes admin/bot turns, an admin viewer consumes user turns.
func markSessionReadFor(sessionID uint, viewerType string) error {
	query := database.DB.Model(&models.Message{}).
		Where("session_id = ? AND is_read = ?", sessionID, false)

	switch viewerType {
	case models.SenderTypeUser:
		query = query.Where("sender_type <> ?", models.SenderTypeUser)
	case models.SenderTypeAdmin:
		query = query.Where("sender_type = ?", models.SenderTypeUser)
	default:
		return nil
	}

	return query.Update("is_read", true).Error
}

// MarkMessageRead flips a single message read. Idempotent: re-marking an
// already read or absent message is a no-op.
func MarkMessageRead(messageID uint) error {
	return database.DB.Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("is_read", true).Error
}

// sessionUnreadCount counts messages in the session the viewer has not seen,
// never counting the viewer's own sends.
func sessionUnreadCount(sessionID uint, viewerType string) (int64, error) {
	query := database.DB.Model(&models.Message{}).
		Where("session_id = ? AND is_read = ?", sessionID, false)

	switch viewerType {
	case models.SenderTypeUser:
		query = query.Where("sender_type <> ?", models.SenderTypeUser)
	case models.SenderTypeAdmin:
		query = query.Where("sender_type = ?", models.SenderTypeUser)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// UnreadFromUsersCount is the admin-side global unread counter: user-authored
// messages nobody has read yet.
func UnreadFromUsersCount() (int64, error) {
	var count int64
	err := database.DB.Model(&models.Message{}).
		Where("is_read = ? AND sender_type = ?", false, models.SenderTypeUser).
		Count(&count).Error
	return count, err
}

// UnreadFromUsers lists the unread user-authored messages for the dashboard.
func UnreadFromUsers() ([]models.Message, error) {
	var messages []models.Message
	err := database.DB.
		Where("is_read = ? AND sender_type = ?", false, models.SenderTypeUser).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// RecentMessages returns the newest messages across all sessions.
func RecentMessages(limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []models.Message
	err := database.DB.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error
	return messages, err
}
