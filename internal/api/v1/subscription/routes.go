package subscription

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	subs := router.Group("/subscriptions")
	subs.POST("", CreateSubscription)
	subs.GET("", ListSubscriptions)
}
