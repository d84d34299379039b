package chat

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/chats", ListChats)
	router.GET("/chats/:id/messages", ListMessages)
	router.POST("/chats/:id/messages", SendMessage)
	router.PATCH("/messages/:id/read", MarkRead)
}
