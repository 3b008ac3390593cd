package middleware

import (
	"net/http"
	"strings"

	"card-sorting-go/internal/auth"
	"card-sorting-go/internal/config"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireSession.
const (
	SessionIDKey  = "sessionID"
	PlayerNameKey = "playerName"
)

// RequireSession validates the session token and exposes its claims to the
// handler. Whether the session is still the live one is decided by the handler.
func RequireSession(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}

		claims, err := auth.ParseSessionToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set(SessionIDKey, claims.SessionID)
		c.Set(PlayerNameKey, claims.PlayerName)
		c.Next()
	}
}

// TokenFromRequest reads the session cookie, then an Authorization bearer header.
func TokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(auth.SessionCookieName); err == nil {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	authz := c.GetHeader("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
