package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// Dashboard returns the full console payload: aggregate stats plus sanitized
// user, subscription, session and message lists.
func Dashboard(c *gin.Context) {
	data, err := services.GetDashboardData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch dashboard data"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Dashboard data retrieved successfully", data))
}

// LiveData is the lightweight payload the console polls every few seconds.
// Counters are computed fresh on every call.
func LiveData(c *gin.Context) {
	counters, err := services.GetLiveCounters()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch live data"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Live data retrieved successfully", counters))
}
