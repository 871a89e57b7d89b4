package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/sinbc2003/cluade2/internal/api"
	"github.com/sinbc2003/cluade2/internal/config"
	"github.com/sinbc2003/cluade2/internal/imagegen"
	"github.com/sinbc2003/cluade2/internal/logging"
	"github.com/sinbc2003/cluade2/internal/repository/mongo"
	"github.com/sinbc2003/cluade2/internal/repository/postgres"
	"github.com/sinbc2003/cluade2/internal/repository/redis"
	"github.com/sinbc2003/cluade2/internal/service"
	"github.com/sinbc2003/cluade2/internal/storage/gcs"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup logging")
	}
	defer logCloser.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting chatbot platform server")

	ctx := context.Background()

	// Document store
	docs, err := mongo.NewDB(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to document store")
	}
	defer docs.Close(ctx)

	if err := docs.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure indexes")
	}

	// Usage telemetry store
	usageDB, err := postgres.NewDB(ctx, cfg.Usage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to usage store")
	}
	defer usageDB.Close()

	// Redis (session cache + public rate limiting)
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Object storage for generated images
	var imageStore imagegen.ObjectStore
	if cfg.Image.Bucket != "" {
		store, err := gcs.NewStore(ctx, cfg.Image.Bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		defer store.Close()
		imageStore = store
	} else {
		log.Warn().Msg("No image bucket configured, image generation disabled")
	}

	// Background retention sweeper
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()

	router := api.NewRouter(cfg, api.Deps{
		Docs:       docs,
		Usage:      usageDB,
		Redis:      redisClient,
		ImageStore: imageStore,
		RetentionFn: func(sweeper *service.RetentionSweeper) {
			go sweeper.Run(sweepCtx)
		},
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
