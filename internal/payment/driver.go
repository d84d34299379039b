package payment

import "context"

// Driver verifies completed payments with the external processor. The
// subscription ledger only accepts order ids that passed this check; the
// client's "I paid" claim is never trusted on its own.
type Driver interface {
	// VerifyOrder confirms that the given processor order id has been
	// captured and returns the captured amount. Implementations must be
	// time-bounded via ctx.
	VerifyOrder(ctx context.Context, orderID string) (float64, error)
}
