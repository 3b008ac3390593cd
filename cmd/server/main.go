package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card-sorting-go/internal/config"
	"card-sorting-go/internal/database"
	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/handlers"
	"card-sorting-go/internal/leaderboard"
	"card-sorting-go/internal/middleware"
	"card-sorting-go/internal/models"
	"card-sorting-go/internal/services"
	"card-sorting-go/internal/tracing"
	"card-sorting-go/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "card-sorting-go"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName: serviceName,
		Environment: cfg.AppEnv,
		Exporter:    cfg.TracesExporter,
		PrettyPrint: cfg.IsDevelopment(),
		Sampler:     cfg.TracesSampler,
		SamplerArg:  cfg.TracesSamplerArg,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	db, err := database.OpenAndMigrate(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("db open/migrate: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}()

	hubRef := websocket.NewHubRef(websocket.NewHub())
	go hubRef.Supervise(time.Second)
	handlers.SetHubProvider(hubRef.Get)

	board := leaderboard.NewStore(models.NewRecordRepo(db), cfg.LeaderboardKey)
	archive := services.NewSessionArchive(db)

	engine := sorting.NewEngine()
	// Order matters: the board must include this game before results are announced.
	engine.OnComplete(board.RecordResults)
	engine.OnComplete(archive.Archive)
	engine.OnComplete(handlers.BroadcastCompleted(board))
	engine.OnChange(handlers.BroadcastState)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.HostCORS(cfg))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	api := r.Group("/api")
	handlers.RegisterGameRoutes(api, engine, board, cfg)
	handlers.RegisterHistoryRoutes(api, archive)

	r.GET("/ws", handlers.WebSocketHandler(hubRef.Get, engine, cfg))

	addr := cfg.Addr
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %v", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	if h, ok := hubRef.Get(); ok && h != nil {
		h.Stop()
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
