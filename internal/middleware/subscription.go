package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// RequireActiveSubscription gates chat endpoints on the entitlement
// predicate, recomputed from the subscriptions table on every request. The
// cached User.HasSubscription flag is deliberately not consulted. 402 is the
// distinguishable "pay to continue" signal the client routes on.
func RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user")
		if !exists {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
			c.Abort()
			return
		}
		user := value.(models.User)

		// Admins never need a subscription.
		if user.IsAdmin {
			c.Next()
			return
		}

		if err := services.RequireActiveSubscription(user.ID); err != nil {
			if errors.Is(err, services.ErrSubscriptionRequired) {
				c.JSON(http.StatusPaymentRequired, utils.NewErrorResponse(http.StatusPaymentRequired, "Active subscription required"))
			} else {
				c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check subscription"))
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
