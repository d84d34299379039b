package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.GET("", ListUsers)
	users.PATCH("/:id", UpdateUser)
}
