package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"gorm.io/gorm"
)

func setupMessageTestDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	db.Migrator().DropTable(&models.User{}, &models.ChatSession{}, &models.Message{}, &models.Attachment{})
	if err := db.AutoMigrate(&models.User{}, &models.ChatSession{}, &models.Message{}, &models.Attachment{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	database.DB = db
	database.RedisClient = nil
}

func TestAppendMessageBumpsActivity(t *testing.T) {
	setupMessageTestDB(t)

	user := createTestUser(t, "talker", false)
	session, _ := CreateChatSession(user.ID, nil)

	database.DB.Model(&models.ChatSession{}).Where("id = ?", session.ID).
		Update("last_activity", time.Now().Add(-time.Hour))

	userID := user.ID
	_, err := AppendMessage(session.ID, &userID, models.SenderTypeUser, "hello")
	assert.NoError(t, err)

	var fresh models.ChatSession
	database.DB.First(&fresh, session.ID)
	assert.WithinDuration(t, time.Now(), fresh.LastActivity, 5*time.Second)
}

// Per-session order is insertion order: created_at ascending with the row id
// as tiebreaker, stable under interleaved admin sends and identical
// timestamps.
func TestSessionMessageOrdering(t *testing.T) {
	setupMessageTestDB(t)

	user := createTestUser(t, "ord", false)
	admin := createTestUser(t, "boss", true)
	session, _ := CreateChatSession(user.ID, nil)

	userID := user.ID
	adminID := admin.ID

	AppendMessage(session.ID, &userID, models.SenderTypeUser, "m1")
	AppendMessage(session.ID, &adminID, models.SenderTypeAdmin, "m2")
	AppendMessage(session.ID, &userID, models.SenderTypeUser, "m3")

	// Same-timestamp inserts keep id order.
	ts := time.Now().Add(time.Minute).Truncate(time.Second)
	for i := 4; i <= 6; i++ {
		database.DB.Create(&models.Message{
			SessionID: session.ID, SenderID: &userID,
			SenderType: models.SenderTypeUser,
			Content:    fmt.Sprintf("m%d", i),
			CreatedAt:  ts,
		})
	}

	views, err := SessionMessages(session.ID, models.SenderTypeUser)
	assert.NoError(t, err)
	assert.Len(t, views, 6)
	for i, view := range views {
		assert.Equal(t, fmt.Sprintf("m%d", i+1), view.Content)
	}
}

func TestUnreadAccounting(t *testing.T) {
	setupMessageTestDB(t)

	user := createTestUser(t, "alice", false)
	session, _ := CreateChatSession(user.ID, nil)
	userID := user.ID

	for i := 0; i < 3; i++ {
		AppendMessage(session.ID, &userID, models.SenderTypeUser, "help")
	}

	// Three user messages, all unread from the admin's side.
	unread, err := UnreadFromUsersCount()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	perSession, err := sessionUnreadCount(session.ID, models.SenderTypeAdmin)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), perSession)

	// The author never counts their own sends as unread.
	own, err := sessionUnreadCount(session.ID, models.SenderTypeUser)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), own)

	// Viewing is the read receipt: after the admin opens the chat, nothing
	// is unread anymore.
	_, err = SessionMessages(session.ID, models.SenderTypeAdmin)
	assert.NoError(t, err)

	unread, err = UnreadFromUsersCount()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestAdminMessagesInsertedPreRead(t *testing.T) {
	setupMessageTestDB(t)

	user := createTestUser(t, "u", false)
	admin := createTestUser(t, "boss", true)
	session, _ := CreateChatSession(user.ID, nil)
	adminID := admin.ID

	message, err := AppendMessage(session.ID, &adminID, models.SenderTypeAdmin, "how can I help?")
	assert.NoError(t, err)
	assert.True(t, message.IsRead, "admins do not need to read their own sends")

	unread, err := UnreadFromUsersCount()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread, "admin sends never show up in the admin unread counter")
}

func TestMarkMessageReadIdempotent(t *testing.T) {
	setupMessageTestDB(t)

	user := createTestUser(t, "u", false)
	session, _ := CreateChatSession(user.ID, nil)
	userID := user.ID

	message, _ := AppendMessage(session.ID, &userID, models.SenderTypeUser, "hi")
	assert.False(t, message.IsRead)

	assert.NoError(t, MarkMessageRead(message.ID))
	assert.NoError(t, MarkMessageRead(message.ID), "re-marking must be a no-op")
	assert.NoError(t, MarkMessageRead(99999), "absent message is a no-op")

	var fresh models.Message
	database.DB.First(&fresh, message.ID)
	assert.True(t, fresh.IsRead)
}

func TestFirstMessageInSession(t *testing.T) {
	setupMessageTestDB(t)

	user := createTestUser(t, "first", false)
	session, _ := CreateChatSession(user.ID, nil)
	userID := user.ID

	AppendMessage(session.ID, &userID, models.SenderTypeUser, "one")
	first, err := FirstMessageInSession(session.ID, user.ID)
	assert.NoError(t, err)
	assert.True(t, first)

	AppendMessage(session.ID, &userID, models.SenderTypeUser, "two")
	first, err = FirstMessageInSession(session.ID, user.ID)
	assert.NoError(t, err)
	assert.False(t, first)
}

func TestSessionMessagesEnrichment(t *testing.T) {
	setupMessageTestDB(t)

	user := createTestUser(t, "rich", false)
	session, _ := CreateChatSession(user.ID, nil)
	userID := user.ID

	message, _ := AppendMessage(session.ID, &userID, models.SenderTypeUser, "see attached")
	database.DB.Create(&models.Attachment{
		MessageID:    message.ID,
		StoredName:   "abc.png",
		OriginalName: "photo.png",
		Size:         42,
		MimeType:     "image/png",
		Path:         "uploads/abc.png",
		UploadedAt:   time.Now(),
		ExpiresAt:    time.Now().Add(AttachmentTTL),
	})

	views, err := SessionMessages(session.ID, models.SenderTypeAdmin)
	assert.NoError(t, err)
	assert.Len(t, views, 1)

	view := views[0]
	if assert.NotNil(t, view.Sender) {
		assert.Equal(t, "rich", view.Sender.Username)
	}
	assert.Len(t, view.Attachments, 1)
	assert.Equal(t, "photo.png", view.Attachments[0].OriginalName)
}
