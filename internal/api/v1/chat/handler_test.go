package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/middleware"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"gorm.io/gorm"
)

func setupChatRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.Migrator().DropTable(&models.User{}, &models.Subscription{}, &models.ChatSession{}, &models.Message{}, &models.Attachment{})
	if err := db.AutoMigrate(&models.User{}, &models.Subscription{}, &models.ChatSession{}, &models.Message{}, &models.Attachment{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	database.DB = db

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Setenv("UPLOAD_DIR", t.TempDir())

	router := gin.New()
	authorized := router.Group("/api/v1")
	authorized.Use(middleware.AuthMiddleware())
	RegisterRoutes(authorized)
	return router
}

// loginAs creates a user directly and issues a session cookie for it,
// skipping the auth endpoints.
func loginAs(t *testing.T, username string, subscribed bool) (models.User, *http.Cookie) {
	user := models.User{Username: username, Email: username + "@x.com", Password: "hash"}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if subscribed {
		if _, err := services.CreateSubscription(user.ID, 9.99); err != nil {
			t.Fatalf("failed to create subscription: %v", err)
		}
	}

	token, err := services.CreateSession(user.ID, false)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	return user, &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func doJSON(router *gin.Engine, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatRequiresAuth(t *testing.T) {
	router := setupChatRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/chat/sessions", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/chat/sessions", nil,
		&http.Cookie{Name: middleware.SessionCookie, Value: "bogus"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Opening or listing consultations without a live grant is a 402, the
// client's signal to route to checkout.
func TestChatRequiresSubscription(t *testing.T) {
	router := setupChatRouter(t)
	_, cookie := loginAs(t, "freeloader", false)

	w := doJSON(router, http.MethodPost, "/api/v1/chat/sessions", gin.H{}, cookie)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/chat/sessions", nil, cookie)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

// An expired grant gates exactly like no grant at all.
func TestChatExpiredSubscription(t *testing.T) {
	router := setupChatRouter(t)
	user, cookie := loginAs(t, "lapsed", true)

	database.DB.Model(&models.Subscription{}).Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Hour))

	w := doJSON(router, http.MethodPost, "/api/v1/chat/sessions", gin.H{}, cookie)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestCreateAndListSessions(t *testing.T) {
	router := setupChatRouter(t)
	_, cookie := loginAs(t, "driver", true)

	w := doJSON(router, http.MethodPost, "/api/v1/chat/sessions",
		gin.H{"vehicle_info": gin.H{"type": "car", "make": "Saab"}}, cookie)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/chat/sessions", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Saab")
}

// Foreign and absent sessions are indistinguishable: both are 404.
func TestSessionOwnership(t *testing.T) {
	router := setupChatRouter(t)

	owner, _ := loginAs(t, "owner", true)
	_, intruderCookie := loginAs(t, "intruder", true)

	session, err := services.CreateChatSession(owner.ID, nil)
	assert.NoError(t, err)

	paths := []string{
		fmt.Sprintf("/api/v1/chat/sessions/%d/messages", session.ID),
		"/api/v1/chat/sessions/99999/messages",
		"/api/v1/chat/sessions/notanid/messages",
	}
	for _, path := range paths {
		w := doJSON(router, http.MethodGet, path, nil, intruderCookie)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestSendAndListMessages(t *testing.T) {
	router := setupChatRouter(t)
	user, cookie := loginAs(t, "sender", true)

	session, _ := services.CreateChatSession(user.ID, nil)
	base := fmt.Sprintf("/api/v1/chat/sessions/%d/messages", session.ID)

	w := doJSON(router, http.MethodPost, base, gin.H{"content": "it makes a grinding noise"}, cookie)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, base, gin.H{"content": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty content is rejected")

	w = doJSON(router, http.MethodGet, base, nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "grinding noise")
}

func multipartUpload(router *gin.Engine, path, filename, mimeType string, content []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", mimeType)
	part, _ := writer.CreatePart(header)
	part.Write(content)
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAttachmentEndpoint(t *testing.T) {
	router := setupChatRouter(t)
	user, cookie := loginAs(t, "uploader", true)

	session, _ := services.CreateChatSession(user.ID, nil)
	path := fmt.Sprintf("/api/v1/chat/sessions/%d/attachments", session.ID)

	w := multipartUpload(router, path, "photo.png", "image/png", []byte("pngbytes"), cookie)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "photo.png")

	w = multipartUpload(router, path, "malware.exe", "application/octet-stream", []byte("mz"), cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code, "disallowed mime type")

	// No file part at all.
	w = doJSON(router, http.MethodPost, path, gin.H{}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
