package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.GET("/me", Me)
	users.POST("/heartbeat", Heartbeat)
}
