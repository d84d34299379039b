package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/middleware"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// Register creates a regular account. Duplicate email/username is a 409.
func Register(c *gin.Context) {
	var input RegisterInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u, err := services.RegisterUser(input.Username, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		case errors.Is(err, services.ErrWeakPassword), errors.Is(err, services.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to register user due to an internal error"))
		}
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("User registered successfully", u.Public()))
}

// Login verifies credentials and issues a fresh session cookie. Any session
// token already present is destroyed first so the session id always rotates
// on login.
func Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u, err := services.VerifyPassword(input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid email or password"))
		return
	}

	if old, err := c.Cookie(middleware.SessionCookie); err == nil && old != "" {
		services.DestroySession(old, false)
	}

	token, err := services.CreateSession(u.ID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not create session"))
		return
	}

	services.SetOnline(u.ID, true)
	middleware.SetSessionCookie(c, middleware.SessionCookie, token, int(services.SessionTTL.Seconds()))

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged in successfully", u.Public()))
}

// Logout destroys the session and flips the user offline.
func Logout(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookie)
	if err == nil && token != "" {
		if session, err := services.GetSession(token, false); err == nil {
			services.SetOnline(session.UserID, false)
		}
		services.DestroySession(token, false)
	}

	middleware.SetSessionCookie(c, middleware.SessionCookie, "", -1)
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
}
