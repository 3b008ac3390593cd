package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"card-sorting-go/internal/auth"
	"card-sorting-go/internal/config"
	"card-sorting-go/internal/game/common"
	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/leaderboard"
	"card-sorting-go/internal/models"
	"card-sorting-go/internal/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type startRequest struct {
	Name string `json:"name"`
}

type dropRequest struct {
	CardID string `json:"card_id"`
	Target string `json:"target"`
}

type resolveRequest struct {
	Target string `json:"target"`
}

func StartGameHandler(engine *sorting.Engine, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.StartGameHandler")
		defer span.End()

		var req startRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeAPIError(c, models.ErrInvalidJSON)
			return
		}
		view, err := engine.Start(ctx, req.Name)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		span.SetAttributes(attribute.String("session.id", view.SessionID))
		respondWithSession(c, cfg, view)
	}
}

func RestartGameHandler(engine *sorting.Engine, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.RestartGameHandler")
		defer span.End()

		view, err := engine.Restart(ctx)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		span.SetAttributes(attribute.String("session.id", view.SessionID))
		respondWithSession(c, cfg, view)
	}
}

// respondWithSession issues a token for the freshly dealt session, both as a
// cookie for the bundled UI and in the body for other clients.
func respondWithSession(c *gin.Context, cfg config.Config, view sorting.View) {
	token, err := auth.GenerateSessionToken(view.SessionID, view.PlayerName, cfg)
	if err != nil {
		log.Printf("respondWithSession: token error: session=%s err=%v", view.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, token, int(cfg.SessionTTL.Seconds()), "/", "", !cfg.IsDevelopment(), true)
	c.JSON(http.StatusOK, gameResponse{Game: view, Token: token})
}

func GetGameHandler(engine *sorting.Engine, board *leaderboard.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.GetGameHandler")
		defer span.End()

		c.JSON(http.StatusOK, buildGameResponse(ctx, engine, board, engine.View()))
	}
}

func DropHandler(engine *sorting.Engine, board *leaderboard.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.DropHandler")
		defer span.End()

		ctx, ok := liveSessionContext(ctx, c)
		if !ok {
			return
		}
		var req dropRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeAPIError(c, models.ErrInvalidJSON)
			return
		}
		target, err := parseTarget(req.Target)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		span.SetAttributes(attribute.String("card.id", req.CardID), attribute.String("card.target", string(target)))

		mv, view, err := engine.Drop(ctx, req.CardID, target)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		resp := buildGameResponse(ctx, engine, board, view)
		resp.Move = &mv
		c.JSON(http.StatusOK, resp)
	}
}

func ResolveHandler(engine *sorting.Engine, board *leaderboard.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.ResolveHandler")
		defer span.End()

		ctx, ok := liveSessionContext(ctx, c)
		if !ok {
			return
		}
		var req resolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeAPIError(c, models.ErrInvalidJSON)
			return
		}
		target, err := parseTarget(req.Target)
		if err != nil {
			writeAPIError(c, err)
			return
		}

		mv, view, err := engine.ResolveCurrent(ctx, target)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		resp := buildGameResponse(ctx, engine, board, view)
		resp.Move = &mv
		c.JSON(http.StatusOK, resp)
	}
}

func NextCardHandler(engine *sorting.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.NextCardHandler")
		defer span.End()

		ctx, ok := liveSessionContext(ctx, c)
		if !ok {
			return
		}
		view, err := engine.Next(ctx)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gameResponse{Game: view})
	}
}

// liveSessionContext binds the request's session claim to ctx so the engine
// rejects events from a discarded game.
func liveSessionContext(ctx context.Context, c *gin.Context) (context.Context, bool) {
	sid, ok := sessionIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
		return ctx, false
	}
	return sorting.ExpectSession(ctx, sid), true
}

func parseTarget(s string) (common.Category, error) {
	cat, err := common.ParseCategory(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidCategory, err)
	}
	return cat, nil
}
