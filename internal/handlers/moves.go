package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"card-sorting-go/internal/models"
	"card-sorting-go/internal/tracing"

	"github.com/gin-gonic/gin"
)

// SessionHistory reads archived games.
type SessionHistory interface {
	ListSessions(ctx context.Context, limit int64) ([]models.GameSession, error)
	Moves(ctx context.Context, sessionID string, wrongOnly bool) ([]models.GameMove, error)
}

// ListSessionsHandler returns recent finished games. Accepts optional 'limit'
// (default 50, clamped to [1, 200]).
func ListSessionsHandler(history SessionHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.ListSessionsHandler")
		defer span.End()

		limit := int64(50)
		if s := c.Query("limit"); s != "" {
			if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
				limit = v
			}
		}
		if limit > 200 {
			limit = 200
		}

		sessions, err := history.ListSessions(ctx, limit)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
	}
}

// SessionMovesHandler returns the move log of one archived game; ?wrong=true
// keeps only misplaced cards.
func SessionMovesHandler(history SessionHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.SessionMovesHandler")
		defer span.End()

		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		wrongOnly, _ := strconv.ParseBool(c.DefaultQuery("wrong", "false"))

		moves, err := history.Moves(ctx, id, wrongOnly)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": id, "moves": moves})
	}
}
