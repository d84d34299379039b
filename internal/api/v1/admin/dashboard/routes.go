package dashboard

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", Dashboard)
	router.GET("/live-data", LiveData)
}
