package services

import (
	"errors"
	"time"

	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"gorm.io/gorm"
)

// SubscriptionWindow is how long a single paid grant lasts.
const SubscriptionWindow = 30 * 24 * time.Hour

var ErrSubscriptionRequired = errors.New("active subscription required")

// CreateSubscription records a paid 30-day grant. The caller must have
// verified the payment with the processor first; expiry is computed server
// side and never taken from the client. Renewal is a new row, existing rows
// are never touched.
func CreateSubscription(userID uint, amount float64) (*models.Subscription, error) {
	now := time.Now()
	sub := &models.Subscription{
		UserID:      userID,
		Amount:      amount,
		Status:      models.SubscriptionStatusActive,
		PurchasedAt: now,
		ExpiresAt:   now.Add(SubscriptionWindow),
	}

	if err := database.DB.Create(sub).Error; err != nil {
		return nil, err
	}

	// Refresh the display-only cache flag. Gating never reads it.
	database.DB.Model(&models.User{}).Where("id = ?", userID).Update("has_subscription", true)
	invalidateUserCache(userID)

	return sub, nil
}

// HasActiveSubscription is the authoritative entitlement predicate: an
// active-status grant with expiry in the future must exist right now. It is
// recomputed from the ledger on every call; User.HasSubscription is never
// consulted.
func HasActiveSubscription(userID uint) (bool, error) {
	var count int64
	err := database.DB.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, models.SubscriptionStatusActive, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RequireActiveSubscription is HasActiveSubscription as a gate.
func RequireActiveSubscription(userID uint) error {
	ok, err := HasActiveSubscription(userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSubscriptionRequired
	}
	return nil
}

// UserSubscriptions lists a user's grants, newest first.
func UserSubscriptions(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := database.DB.Where("user_id = ?", userID).Order("purchased_at DESC").Find(&subs).Error
	return subs, err
}

// SubscriptionDaysLeft returns the days remaining on the furthest-out active
// grant, zero when none qualifies.
func SubscriptionDaysLeft(userID uint) (int, error) {
	var sub models.Subscription
	err := database.DB.
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, models.SubscriptionStatusActive, time.Now()).
		Order("expires_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	days := int(time.Until(sub.ExpiresAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, nil
}

// AllActiveSubscriptions returns every grant still marked active, for the
// admin dashboard.
func AllActiveSubscriptions() ([]models.Subscription, error) {
	var subs []models.Subscription
	err := database.DB.Where("status = ?", models.SubscriptionStatusActive).Find(&subs).Error
	return subs, err
}
