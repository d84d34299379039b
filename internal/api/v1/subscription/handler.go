package subscription

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/config"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"github.com/wiktoriatopajew/pipa/internal/payment"
	"github.com/wiktoriatopajew/pipa/internal/payment/paypal"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// Driver can be swapped in tests. When nil, a PayPal driver is built from
// config on each request.
var Driver payment.Driver

func paymentDriver() (payment.Driver, error) {
	if Driver != nil {
		return Driver, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	d := paypal.NewDriver(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalBaseURL)
	if !d.Configured() {
		return nil, paypal.ErrNotConfigured
	}
	return d, nil
}

// CreateSubscription verifies the captured order with the processor and
// records a 30-day grant for the caller. The amount is the processor's
// captured amount; expiry is computed server side.
func CreateSubscription(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	var input CreateSubscriptionInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	driver, err := paymentDriver()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable,
			"Payment processing is temporarily unavailable. Please try again later."))
		return
	}

	amount, err := driver.VerifyOrder(c.Request.Context(), input.OrderID)
	if err != nil {
		if errors.Is(err, paypal.ErrOrderNotFound) || errors.Is(err, paypal.ErrOrderNotCompleted) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Payment could not be verified"))
			return
		}
		c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, "Payment verification failed, please try again"))
		return
	}

	sub, err := services.CreateSubscription(u.ID, amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create subscription"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Subscription created", sub))
}

// ListSubscriptions returns the caller's own grants, newest first.
func ListSubscriptions(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	subs, err := services.UserSubscriptions(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch subscriptions"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Subscriptions retrieved successfully", subs))
}
