package handlers

import (
	"net/http"

	"card-sorting-go/internal/leaderboard"
	"card-sorting-go/internal/tracing"

	"github.com/gin-gonic/gin"
)

// LeaderboardHandler serves the persisted top-N board. Unreadable storage
// shows as an empty board.
func LeaderboardHandler(board *leaderboard.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.LeaderboardHandler")
		defer span.End()

		c.JSON(http.StatusOK, gin.H{"leaderboard": board.Load(ctx)})
	}
}
