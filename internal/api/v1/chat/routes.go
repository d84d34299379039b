package chat

import (
	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/chat/sessions")

	// Opening and listing consultations requires a live grant; reading and
	// writing an existing owned session does not re-check payment.
	sessions.POST("", middleware.RequireActiveSubscription(), CreateSession)
	sessions.GET("", middleware.RequireActiveSubscription(), ListSessions)

	sessions.GET("/:id/messages", ListMessages)
	sessions.POST("/:id/messages", SendMessage)
	sessions.POST("/:id/attachments", UploadAttachment)
}
