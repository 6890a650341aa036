package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_id"

// Identifier is the minimal interface the middleware depends on: it maps a
// session token to a username, empty when the token is unknown.
type Identifier interface {
	Identify(ctx context.Context, token string) (string, error)
}

// SessionToken extracts the session token from the session cookie, falling
// back to an Authorization Bearer header.
func SessionToken(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return ""
	}
	var token string
	if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n == 1 {
		return token
	}
	return ""
}

// SessionMiddleware returns a Gin middleware that rejects requests without a
// valid session and stores the username under "user" for downstream handlers.
func SessionMiddleware(ident Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		username, err := ident.Identify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Set("user", username)
		c.Next()
	}
}
