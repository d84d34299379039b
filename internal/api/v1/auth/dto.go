package auth

import "github.com/wiktoriatopajew/pipa/internal/models"

type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// MeResponse is the identity payload plus the derived subscription state the
// client renders. Subscription fields are recomputed from the ledger on
// every call.
type MeResponse struct {
	User             models.PublicUser `json:"user"`
	HasSubscription  bool              `json:"has_subscription"`
	SubscriptionDays int               `json:"subscription_days_left"`
}
