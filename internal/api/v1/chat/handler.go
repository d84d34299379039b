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

// ownedSession loads the session from the :id param and checks ownership.
// Both "does not exist" and "belongs to someone else" surface as the same
// 404, so foreign sessions cannot be probed.
func ownedSession(c *gin.Context, user models.User) (*models.ChatSession, bool) {
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

	if err := services.AuthorizeSessionAccess(user, *session); err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Chat session not found"))
		return nil, false
	}

	return session, true
}

// CreateSession opens a consultation thread. Requires an active
// subscription (enforced by the route gate).
func CreateSession(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	var input CreateSessionInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	session, err := services.CreateChatSession(u.ID, input.VehicleInfo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create chat session"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Chat session created", session))
}

// ListSessions returns the caller's sessions with previews, sorted by
// effective last activity.
func ListSessions(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	previews, err := services.UserSessionPreviews(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch chat sessions"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Chat sessions retrieved successfully", previews))
}

// ListMessages returns the session's messages in order. Viewing marks the
// other party's unread messages read.
func ListMessages(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	session, ok := ownedSession(c, u)
	if !ok {
		return
	}

	messages, err := services.SessionMessages(session.ID, models.SenderTypeUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch messages"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Messages retrieved successfully", messages))
}

// SendMessage appends a user turn. The first message a user sends in a
// session triggers the staff notification, which never blocks or fails the
// send itself.
func SendMessage(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	session, ok := ownedSession(c, u)
	if !ok {
		return
	}

	var input SendMessageInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	senderID := u.ID
	message, err := services.AppendMessage(session.ID, &senderID, models.SenderTypeUser, input.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to send message"))
		return
	}

	if first, err := services.FirstMessageInSession(session.ID, u.ID); err == nil && first {
		services.NotifyFirstMessage(u, *session, input.Content)
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Message sent", message))
}

// UploadAttachment accepts a multipart file, validates its type and size and
// appends the placeholder message with the attachment bound to it.
func UploadAttachment(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	session, ok := ownedSession(c, u)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "File is required"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to read uploaded file"))
		return
	}
	defer src.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	message, attachment, err := services.UploadAttachment(*session, u, src, fileHeader.Filename, mimeType, fileHeader.Size)
	if err != nil {
		if errors.Is(err, services.ErrAttachmentInvalid) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to store attachment"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("File uploaded", gin.H{
		"message":    message,
		"attachment": attachment,
	}))
}
