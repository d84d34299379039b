package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/api/v1/auth"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// Me returns the caller's identity and derived subscription state. The
// subscription fields come from the ledger, not the cached flag, so the
// client always sees the authoritative entitlement.
func Me(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	hasSub, err := services.HasActiveSubscription(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load subscription state"))
		return
	}

	days := 0
	if hasSub {
		days, _ = services.SubscriptionDaysLeft(u.ID)
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User information retrieved successfully", auth.MeResponse{
		User:             u.Public(),
		HasSubscription:  hasSub,
		SubscriptionDays: days,
	}))
}

// Heartbeat keeps the caller flagged online. Clients post this on a fixed
// interval; presence simply goes stale when they stop.
func Heartbeat(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	if err := services.Heartbeat(u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update heartbeat"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Heartbeat recorded", nil))
}
