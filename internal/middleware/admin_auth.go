package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

// AdminAuthMiddleware validates the admin session cookie. The admin
// namespace is separate from user sessions, and the backing user record must
// still carry the admin flag at request time.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AdminSessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Admin access required"))
			c.Abort()
			return
		}

		session, err := services.GetSession(token, true)
		if err != nil || !session.IsAdmin {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Admin access required"))
			c.Abort()
			return
		}

		admin, err := services.FindUserByID(session.UserID)
		if err != nil || !admin.IsAdmin {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Admin access required"))
			c.Abort()
			return
		}

		c.Set("admin", admin)
		c.Set("session_token", token)
		c.Next()
	}
}
