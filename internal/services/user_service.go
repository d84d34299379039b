package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

func userCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func invalidateUserCache(userID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, userCacheKey(userID))
	}
}

// FindUserByID loads a user, going through the redis read-through cache when
// available. Cached copies are display state only; nothing authorization
// sensitive is derived from them.
func FindUserByID(userID uint) (models.User, error) {
	cacheKey := userCacheKey(userID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(user); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, time.Hour)
		}
	}

	return user, nil
}

// FindUsers retrieves a paginated list of users.
func FindUsers(page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	offset := (page - 1) * limit

	if err := database.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := database.DB.Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// AllNonAdminUsers returns every regular account, for the admin console.
func AllNonAdminUsers() ([]models.User, error) {
	var users []models.User
	if err := database.DB.Where("is_admin = ?", false).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies selective field updates. Passwords are rehashed before
// storage; the cache entry is dropped so the next read sees fresh state.
func UpdateUser(id uint, updates map[string]interface{}) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if password, ok := updates["password"].(string); ok && password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hashedPassword)
	}

	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	invalidateUserCache(id)

	if err := database.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Heartbeat marks the user online and bumps last_seen. Presence is
// best-effort: a missed heartbeat leaves is_online stale until the next
// write, which callers must tolerate.
func Heartbeat(userID uint) error {
	result := database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_online": true,
		"last_seen": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	invalidateUserCache(userID)
	return nil
}

// SetOnline flips the presence flag as a side effect of login/logout.
func SetOnline(userID uint, online bool) error {
	updates := map[string]interface{}{"is_online": online}
	if online {
		updates["last_seen"] = time.Now()
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	invalidateUserCache(userID)
	return nil
}

// OnlineUserCount counts regular users currently flagged online.
func OnlineUserCount() (int64, error) {
	var count int64
	err := database.DB.Model(&models.User{}).
		Where("is_online = ? AND is_admin = ?", true, false).
		Count(&count).Error
	return count, err
}
