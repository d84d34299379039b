package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// Cookie names for the two session namespaces. Both cookies are httpOnly;
// the token value is opaque and maps to server-side session state.
const (
	SessionCookie      = "session_id"
	AdminSessionCookie = "admin_session_id"
)

// SetSessionCookie installs an httpOnly session cookie. An empty token with
// maxAge < 0 clears it.
func SetSessionCookie(c *gin.Context, name, token string, maxAge int) {
	c.SetCookie(name, token, maxAge, "/", "", false, true)
}

// AuthMiddleware resolves the user session cookie to a full user record.
// Identity comes only from server-side session state, never from anything
// the client supplies in the payload.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
			c.Abort()
			return
		}

		session, err := services.GetSession(token, false)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid or expired session"))
			c.Abort()
			return
		}

		user, err := services.FindUserByID(session.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "User not found"))
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("session_token", token)
		c.Next()
	}
}
