package subscription

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// GrantSubscription records a 30-day grant for a user without going through
// the payment processor, for support cases (refund make-goods, comped
// access). Expiry is computed server side exactly like a paid grant.
func GrantSubscription(c *gin.Context) {
	var input GrantSubscriptionInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	user, err := services.FindUserByID(input.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load user"))
		return
	}

	sub, err := services.CreateSubscription(user.ID, input.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create subscription"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Subscription granted", sub))
}
