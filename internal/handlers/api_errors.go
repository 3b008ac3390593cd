package handlers

import (
	"errors"
	"log"
	"net/http"

	"card-sorting-go/internal/models"

	"github.com/gin-gonic/gin"
)

func writeAPIError(c *gin.Context, err error) {
	if err == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrSessionNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	// Typed validation and conflict errors carry safe messages; raw errors are never echoed.
	switch {
	case errors.Is(err, models.ErrInvalidJSON):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	case errors.Is(err, models.ErrEmptyPlayerName):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "player name required"})
		return
	case errors.Is(err, models.ErrInvalidCategory):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	case errors.Is(err, models.ErrCardNotDealt):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "card not dealt"})
		return
	case errors.Is(err, models.ErrCardAlreadyPlaced):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "card already placed"})
		return
	case errors.Is(err, models.ErrNotPlaying):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "game not in progress"})
		return
	case errors.Is(err, models.ErrGameCompleted):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "game already completed"})
		return
	case errors.Is(err, models.ErrStaleSession):
		log.Printf("stale session event: player=%q path=%s", playerNameFromContext(c), c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "session no longer active"})
		return
	}

	log.Printf("internal error: %v", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
