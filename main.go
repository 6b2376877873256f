package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bverlaan/yogabench/config"
	"bverlaan/yogabench/internal/places"
	"bverlaan/yogabench/logger"
	"bverlaan/yogabench/server"
	"bverlaan/yogabench/services/cache"
	"bverlaan/yogabench/services/publisher"
	"bverlaan/yogabench/services/status"
	"bverlaan/yogabench/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	log.WithField("environment", cfg.Environment).
		WithField("strategy", cfg.FetchStrategy).
		WithField("data_dir", cfg.DataDir).
		Info("Starting application")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional shared cache for the fetcher's rate-limit guard
	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	// Optional offer stream publisher
	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPub := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		defer redisPub.Close()
		pub = redisPub
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	// Optional website resolver, only when a places key is available
	placesCache := places.LoadCache(cfg.PlacesCachePath)
	var resolver places.WebsiteResolver
	if key, err := places.ReadKey(cfg.PlacesKey, cfg.PlacesKeyPath); err != nil {
		log.WithError(err).Warn("No places key, competitors without a website will be skipped")
	} else {
		resolver = places.NewResolver(placesCache, places.NewClient(key), cfg.PlacesDelay)
	}

	tracker := status.NewTracker(cfg.StatusPath)
	runner := worker.NewRunner(cfg, worker.Deps{
		Tracker:     tracker,
		Publisher:   pub,
		Resolver:    resolver,
		PlacesCache: placesCache,
		Fetchers:    worker.DefaultFetcherFactory(cfg, cacheSvc),
	})

	srv := server.New(cfg, runner, tracker)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverDone:
		if err != nil {
			log.WithError(err).Error("Server exited with error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Shut down")
}
