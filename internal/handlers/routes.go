package handlers

import (
	"card-sorting-go/internal/config"
	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/leaderboard"
	"card-sorting-go/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterGameRoutes wires the sorting game. Card events require the token
// issued by start or restart.
func RegisterGameRoutes(rg *gin.RouterGroup, engine *sorting.Engine, board *leaderboard.Store, cfg config.Config) {
	rg.POST("/game/start", StartGameHandler(engine, cfg))
	rg.POST("/game/restart", RestartGameHandler(engine, cfg))
	rg.GET("/game", GetGameHandler(engine, board))

	session := rg.Group("/game")
	session.Use(middleware.RequireSession(cfg))
	session.POST("/drop", DropHandler(engine, board))
	session.POST("/resolve", ResolveHandler(engine, board))
	session.POST("/next", NextCardHandler(engine))

	rg.GET("/leaderboard", LeaderboardHandler(board))
}

// RegisterHistoryRoutes wires the archive of finished games.
func RegisterHistoryRoutes(rg *gin.RouterGroup, history SessionHistory) {
	rg.GET("/sessions", ListSessionsHandler(history))
	rg.GET("/sessions/:id/moves", SessionMovesHandler(history))
}
