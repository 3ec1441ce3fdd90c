package admin

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	// SessionName is the admin session cookie name
	SessionName = "inkwell_admin"
	// sessionKeyLoggedIn is the boolean flag marking an admin session
	sessionKeyLoggedIn = "admin_logged_in"
)

// SessionMiddleware returns the cookie-backed session store middleware for
// the admin surface.
func SessionMiddleware(secret string) gin.HandlerFunc {
	return sessions.Sessions(SessionName, cookie.NewStore([]byte(secret)))
}

// isLoggedIn reports whether the session carries the admin flag
func isLoggedIn(c *gin.Context) bool {
	session := sessions.Default(c)
	v, ok := session.Get(sessionKeyLoggedIn).(bool)
	return ok && v
}

// RequireSession rejects API requests without an admin session
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isLoggedIn(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin session required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
