package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wiktoriatopajew/pipa/config"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"github.com/wiktoriatopajew/pipa/internal/utils"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

type firstMessageNotification struct {
	Event     string    `json:"event"`
	SessionID uint      `json:"session_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

// NotifyFirstMessage alerts staff that a fresh consultation got its first
// user message. Strictly fire-and-forget: it runs off the request goroutine,
// is time-bounded, and any failure is logged and swallowed. The chat send
// must never fail because the notification did.
func NotifyFirstMessage(user models.User, session models.ChatSession, content string) {
	cfg, err := config.LoadConfig()
	if err != nil || cfg.NotifyWebhookURL == "" {
		return
	}

	payload := firstMessageNotification{
		Event:     "chat.first_message",
		SessionID: session.ID,
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Content:   content,
		SentAt:    time.Now(),
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			zap.L().Warn("first-message notification: marshal failed", zap.Error(err))
			return
		}

		client := utils.NewHTTPClient(notifyTimeout)
		resp, err := client.Post(cfg.NotifyWebhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			zap.L().Warn("first-message notification failed",
				zap.Uint("session_id", session.ID), zap.Error(err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			zap.L().Warn("first-message notification rejected",
				zap.Uint("session_id", session.ID),
				zap.Int("status", resp.StatusCode))
		}
	}()
}
