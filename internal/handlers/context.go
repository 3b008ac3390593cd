package handlers

import (
	"card-sorting-go/internal/middleware"

	"github.com/gin-gonic/gin"
)

// sessionIDFromContext returns the session id RequireSession stored for this request.
func sessionIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.SessionIDKey)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func playerNameFromContext(c *gin.Context) string {
	return c.GetString(middleware.PlayerNameKey)
}
