package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookieName carries the signed session token.
const SessionCookieName = "atlas_token"

// DashboardGuard redirects requests under /dashboard to the login page when
// the session cookie is absent. Presence-only check: the cookie is not
// verified here, only by the API endpoints that actually trust it.
func DashboardGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/dashboard") {
			if _, err := c.Cookie(SessionCookieName); err != nil {
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
