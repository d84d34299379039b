package subscription

type CreateSubscriptionInput struct {
	// OrderID is the processor order id from the client-side checkout. The
	// server verifies it against PayPal before any grant is created; no
	// amount or user id is accepted from the client.
	OrderID string `json:"order_id" binding:"required"`
}
