package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/agent"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/archive"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/capture"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/config"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/logger"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/portal"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/queue"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/session"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting portal agent")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store: redis when configured, file otherwise. The redis
	// client is shared with the archive queue.
	var store session.Store
	var redisClient *queue.RedisClient
	if cfg.Session.Backend == "redis" || cfg.Archive.Enabled {
		redisClient, err = queue.NewRedisClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}
	if cfg.Session.Backend == "redis" {
		store = session.NewRedisStore(redisClient.Client(), cfg.Session.Key)
	} else {
		store = session.NewFileStore(cfg.Session.Path)
	}

	// Portal gateway
	client := portal.NewClient(cfg, store)

	// Capture flow: directory camera plus optional background archival
	var archiver capture.Archiver
	if cfg.Archive.Enabled {
		s3Store, err := storage.NewS3Storage(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize archive storage")
		}
		archiver = queue.NewProducer(redisClient, cfg)

		worker := archive.NewWorker(cfg, s3Store, redisClient)
		go func() {
			if err := worker.Start(ctx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("Archive worker stopped")
			}
		}()
		defer worker.Stop()
	}
	camera := capture.DirectoryCamera{Dir: cfg.Camera.FramesDir}
	captures := capture.NewManager(camera, client, archiver, cfg.Camera.JPEGQuality)

	// Background schedule refresher
	refresher := agent.NewRefresher(cfg, client)
	go refresher.Start(ctx)

	// Initialize handler
	handler := agent.NewHandler(cfg, client, store, captures, refresher)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(agent.CORSMiddleware())
	router.Use(agent.LoggingMiddleware())
	router.Use(agent.RecoveryMiddleware())

	// Setup routes
	agent.SetupRoutes(router, handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down agent...")
	cancel()

	// Create context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Agent exited")
}
