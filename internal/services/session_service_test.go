package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/wiktoriatopajew/pipa/internal/database"
)

func setupSessionTest(t *testing.T) *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr
}

func TestSessionLifecycle(t *testing.T) {
	setupSessionTest(t)

	token, err := CreateSession(42, false)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	data, err := GetSession(token, false)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), data.UserID)
	assert.False(t, data.IsAdmin)

	assert.NoError(t, DestroySession(token, false))

	_, err = GetSession(token, false)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Destroying an already absent token stays silent.
	assert.NoError(t, DestroySession(token, false))
}

// User and admin tokens live in separate namespaces. A valid token for one
// realm must read as absent in the other.
func TestSessionNamespaceIsolation(t *testing.T) {
	setupSessionTest(t)

	userToken, err := CreateSession(1, false)
	assert.NoError(t, err)
	adminToken, err := CreateSession(2, true)
	assert.NoError(t, err)

	_, err = GetSession(userToken, true)
	assert.ErrorIs(t, err, ErrSessionExpired, "user token must not resolve as admin")

	_, err = GetSession(adminToken, false)
	assert.ErrorIs(t, err, ErrSessionExpired, "admin token must not resolve as user")

	data, err := GetSession(adminToken, true)
	assert.NoError(t, err)
	assert.Equal(t, uint(2), data.UserID)
	assert.True(t, data.IsAdmin)
}

func TestSessionExpiry(t *testing.T) {
	mr := setupSessionTest(t)

	token, err := CreateSession(7, false)
	assert.NoError(t, err)

	mr.FastForward(SessionTTL - time.Minute)
	_, err = GetSession(token, false)
	assert.NoError(t, err, "still valid just before the TTL")

	mr.FastForward(2 * time.Minute)
	_, err = GetSession(token, false)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionTokensAreUnique(t *testing.T) {
	setupSessionTest(t)

	t1, err := CreateSession(5, false)
	assert.NoError(t, err)
	t2, err := CreateSession(5, false)
	assert.NoError(t, err)
	assert.NotEqual(t, t1, t2, "every login issues a fresh token")
}
