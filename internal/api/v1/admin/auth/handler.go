package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/middleware"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the admin account into its own session namespace.
// Valid credentials on a non-admin account fail identically to bad
// credentials.
func Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	admin, err := services.VerifyAdminPassword(input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid admin credentials"))
		return
	}

	if old, err := c.Cookie(middleware.AdminSessionCookie); err == nil && old != "" {
		services.DestroySession(old, true)
	}

	token, err := services.CreateSession(admin.ID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not create session"))
		return
	}

	services.SetOnline(admin.ID, true)
	middleware.SetSessionCookie(c, middleware.AdminSessionCookie, token, int(services.SessionTTL.Seconds()))

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged in successfully", admin.Public()))
}

// Logout destroys the admin session and flips the account offline.
func Logout(c *gin.Context) {
	token, err := c.Cookie(middleware.AdminSessionCookie)
	if err == nil && token != "" {
		if session, err := services.GetSession(token, true); err == nil {
			services.SetOnline(session.UserID, false)
		}
		services.DestroySession(token, true)
	}

	middleware.SetSessionCookie(c, middleware.AdminSessionCookie, "", -1)
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
}
