package subscription

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/subscriptions", GrantSubscription)
}
