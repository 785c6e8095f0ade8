package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"graph-explorer/backend/pkg/config"
	apperrors "graph-explorer/backend/pkg/errors"
	"graph-explorer/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting graph explorer server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.IsProduction() {
		if err := logger.Init(cfg.Env); err != nil {
			log.Fatal("Failed to initialize production logger", zap.Error(err))
		}
		log = logger.Get()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize", zap.Error(err))
	}
	defer a.close()

	// Initial graph
	loadCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	if err := a.session.Load(loadCtx, cfg.InitialQuery, cfg.InitialNodeType); err != nil {
		log.Warn("Initial load failed, starting with an empty graph",
			zap.String("message", apperrors.UserMessage(err)),
			zap.Error(err),
		)
	}
	cancel()

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(a, log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Wait for interrupt signal
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited")
}
