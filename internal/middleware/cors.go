package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"card-sorting-go/internal/config"

	"github.com/gin-gonic/gin"
)

// OriginPolicy decides which browser origins may drive the game. Configured
// origins are accepted everywhere; loopback origins only in development.
type OriginPolicy struct {
	dev     bool
	allowed map[string]bool
}

func NewOriginPolicy(cfg config.Config) OriginPolicy {
	p := OriginPolicy{dev: cfg.IsDevelopment(), allowed: map[string]bool{}}
	for _, o := range cfg.WSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			p.allowed[o] = true
		}
	}
	return p
}

func (p OriginPolicy) Allows(origin string) bool {
	if p.allowed[origin] {
		return true
	}
	return p.dev && isLoopbackOrigin(origin)
}

// HostCORS lets the host UI shell call the game with credentials.
func HostCORS(cfg config.Config) gin.HandlerFunc {
	policy := NewOriginPolicy(cfg)

	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" {
			c.Next()
			return
		}

		if policy.Allows(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
