package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

func setupDashboardRouter(t *testing.T) *gin.Engine {
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

	router := gin.New()
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.AdminAuthMiddleware())
	RegisterRoutes(admin)
	return router
}

func adminCookie(t *testing.T) *http.Cookie {
	admin := models.User{Username: "boss", Email: "boss@x.com", Password: "hash", IsAdmin: true}
	if err := database.DB.Create(&admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	token, err := services.CreateSession(admin.ID, true)
	if err != nil {
		t.Fatalf("failed to create admin session: %v", err)
	}
	return &http.Cookie{Name: middleware.AdminSessionCookie, Value: token}
}

func get(router *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDashboardRequiresAdminSession(t *testing.T) {
	router := setupDashboardRouter(t)

	w := get(router, "/api/v1/admin/dashboard")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A regular user session presented as the admin cookie still fails: the
	// namespaces are separate.
	user := models.User{Username: "sneaky", Email: "sneaky@x.com", Password: "hash"}
	database.DB.Create(&user)
	userToken, _ := services.CreateSession(user.ID, false)

	w = get(router, "/api/v1/admin/dashboard",
		&http.Cookie{Name: middleware.AdminSessionCookie, Value: userToken})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDashboard(t *testing.T) {
	router := setupDashboardRouter(t)
	cookie := adminCookie(t)

	alice := models.User{Username: "alice", Email: "alice@x.com", Password: "hash"}
	database.DB.Create(&alice)
	services.CreateSubscription(alice.ID, 9.99)

	session, _ := services.CreateChatSession(alice.ID, nil)
	aliceID := alice.ID
	services.AppendMessage(session.ID, &aliceID, models.SenderTypeUser, "hello")

	w := get(router, "/api/v1/admin/dashboard", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.DashboardData `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, int64(1), resp.Data.Stats.TotalUsers)
	assert.Equal(t, int64(1), resp.Data.Stats.SubscribedUsers)
	assert.Equal(t, int64(1), resp.Data.Stats.ActiveChats)
	assert.Equal(t, int64(1), resp.Data.Stats.UnreadMessages)
	assert.InDelta(t, 9.99, resp.Data.Stats.TotalRevenue, 0.001)
	assert.NotContains(t, w.Body.String(), "hash", "password hashes never leave the server")
}

func TestLiveData(t *testing.T) {
	router := setupDashboardRouter(t)
	cookie := adminCookie(t)

	alice := models.User{Username: "alice", Email: "alice@x.com", Password: "hash"}
	database.DB.Create(&alice)
	session, _ := services.CreateChatSession(alice.ID, nil)
	aliceID := alice.ID
	services.AppendMessage(session.ID, &aliceID, models.SenderTypeUser, "anyone there?")
	services.SetOnline(alice.ID, true)

	w := get(router, "/api/v1/admin/live-data", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.LiveCounters `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.UnreadCount)
	assert.Equal(t, int64(1), resp.Data.ActiveChatsCount)
	assert.Equal(t, int64(1), resp.Data.OnlineUsersCount)
}
