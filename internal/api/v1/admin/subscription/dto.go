package subscription

type GrantSubscriptionInput struct {
	UserID uint `json:"user_id" binding:"required"`
	// Amount is what the user paid out of band, if anything. Zero records a
	// complimentary grant.
	Amount float64 `json:"amount" binding:"gte=0"`
}
