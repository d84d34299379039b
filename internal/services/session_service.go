package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wiktoriatopajew/pipa/internal/database"
)

// Auth sessions are opaque tokens stored server side. User and admin logins
// live in separate key namespaces so an admin cookie can never be replayed
// against user endpoints and vice versa.
const (
	userSessionPrefix  = "session:"
	adminSessionPrefix = "admin_session:"

	SessionTTL = 7 * 24 * time.Hour
)

var ErrSessionExpired = errors.New("session expired or not found")

type SessionData struct {
	UserID  uint `json:"user_id"`
	IsAdmin bool `json:"is_admin"`
}

func sessionKey(token string, admin bool) string {
	if admin {
		return adminSessionPrefix + token
	}
	return userSessionPrefix + token
}

// CreateSession issues a fresh opaque token for the given identity. Callers
// must always create a new token at login (never reuse one) so session ids
// rotate and fixation is not possible.
func CreateSession(userID uint, admin bool) (string, error) {
	token := uuid.New().String()

	data, err := json.Marshal(SessionData{UserID: userID, IsAdmin: admin})
	if err != nil {
		return "", err
	}

	if err := database.RedisClient.Set(database.Ctx, sessionKey(token, admin), data, SessionTTL).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// GetSession resolves a token to its identity, or ErrSessionExpired.
func GetSession(token string, admin bool) (*SessionData, error) {
	val, err := database.RedisClient.Get(database.Ctx, sessionKey(token, admin)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, err
	}

	return &data, nil
}

// DestroySession removes the token. Destroying an already absent token is
// not an error.
func DestroySession(token string, admin bool) error {
	return database.RedisClient.Del(database.Ctx, sessionKey(token, admin)).Err()
}
