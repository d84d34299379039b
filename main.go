package main

import (
	"log"
	"time"

	"github.com/wiktoriatopajew/pipa/config"
	"github.com/wiktoriatopajew/pipa/internal/api"
	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.ChatSession{},
		&models.Message{},
		&models.Attachment{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	initAdminUser(cfg)

	sweeper := services.NewAttachmentSweeper(24 * time.Hour)
	go sweeper.Start()
	defer sweeper.Stop()

	if err := router.Run(":8080"); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// initAdminUser creates the single admin account from the bootstrap
// credentials if it does not exist yet. Exactly one admin exists per
// deployment.
func initAdminUser(cfg *config.Config) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("Admin bootstrap skipped: ADMIN_EMAIL/ADMIN_PASSWORD not set.")
		return
	}

	var admin models.User
	result := database.DB.Where("is_admin = ?", true).First(&admin)
	if result.Error == nil {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	admin = models.User{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: string(hashedPassword),
		IsAdmin:  true,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}
	log.Println("Admin user created successfully!")
}
