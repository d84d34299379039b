package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/config"
	adminAuth "github.com/wiktoriatopajew/pipa/internal/api/v1/admin/auth"
	adminChat "github.com/wiktoriatopajew/pipa/internal/api/v1/admin/chat"
	adminDashboard "github.com/wiktoriatopajew/pipa/internal/api/v1/admin/dashboard"
	adminSubscription "github.com/wiktoriatopajew/pipa/internal/api/v1/admin/subscription"
	adminUser "github.com/wiktoriatopajew/pipa/internal/api/v1/admin/user"
	"github.com/wiktoriatopajew/pipa/internal/api/v1/auth"
	"github.com/wiktoriatopajew/pipa/internal/api/v1/chat"
	"github.com/wiktoriatopajew/pipa/internal/api/v1/files"
	"github.com/wiktoriatopajew/pipa/internal/api/v1/subscription"
	userRoutes "github.com/wiktoriatopajew/pipa/internal/api/v1/user"
	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/middleware"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS. Credentials must be allowed for the session cookies.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum age for preflight requests
	}))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)
		files.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			userRoutes.RegisterRoutes(authorized)
			subscription.RegisterRoutes(authorized)
			chat.RegisterRoutes(authorized)
		}

		// Admin routes: login is public, everything else behind the admin
		// session.
		admin := v1.Group("/admin")
		adminAuth.RegisterRoutes(admin)

		adminProtected := admin.Group("/")
		adminProtected.Use(middleware.AdminAuthMiddleware())
		{
			adminUser.RegisterRoutes(adminProtected)
			adminSubscription.RegisterRoutes(adminProtected)
			adminChat.RegisterRoutes(adminProtected)
			adminDashboard.RegisterRoutes(adminProtected)
		}
	}

	return router, nil
}
