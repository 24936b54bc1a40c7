package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
)

const sessionKey = "session"

// Middleware enforces bearer JWT tokens signed with HS256 and attaches
// the decoded session to the request context. Which verbs a session
// may call is decided by the domain layer, not here.
func Middleware(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(sessionKey, claims.Session())
		c.Next()
	}
}

// SessionFrom returns the session attached by Middleware. The zero
// session (unbound parent) comes back when nothing is attached.
func SessionFrom(c *gin.Context) portal.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(portal.Session); ok {
			return sess
		}
	}
	return portal.Session{}
}
