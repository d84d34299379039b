package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

type SendMessageInput struct {
	Content string `json:"content" binding:"required"`
}

func sessionFromParam(c *gin.Context) (*models.ChatSession, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Chat session not found"))
		return nil, false
	}

	session, err := services.GetChatSession(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Chat session not found"))
		} else {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load chat session"))
		}
		return nil, false
	}

	return session, true
}

// ListChats returns every active session across all users, enriched for the
// console. Admins bypass ownership entirely.
func ListChats(c *gin.Context) {
	previews, err := services.ActiveSessionPreviews()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch chat sessions"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Chat sessions retrieved successfully", previews))
}

// ListMessages returns a session's messages for the console. Opening a chat
// consumes its unread user messages.
func ListMessages(c *gin.Context) {
	session, ok := sessionFromParam(c)
	if !ok {
		return
	}

	messages, err := services.SessionMessages(session.ID, models.SenderTypeAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch messages"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Messages retrieved successfully", messages))
}

// SendMessage appends an admin reply. The row is inserted already read from
// the admin's side; it stays unread for the user until they open the chat.
func SendMessage(c *gin.Context) {
	admin := c.MustGet("admin").(models.User)

	session, ok := sessionFromParam(c)
	if !ok {
		return
	}

	var input SendMessageInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	senderID := admin.ID
	message, err := services.AppendMessage(session.ID, &senderID, models.SenderTypeAdmin, input.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to send message"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Message sent", message))
}

// MarkRead flips one message read. Safe to repeat.
func MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid message id"))
		return
	}

	if err := services.MarkMessageRead(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to mark message as read"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Message marked as read", nil))
}
