package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"marketscope/server/config"
	"marketscope/server/internal/api"
	"marketscope/server/internal/archive"
	"marketscope/server/internal/places"
	"marketscope/server/internal/processor"
	"marketscope/server/internal/queue"
	"marketscope/server/internal/session"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := config.LoadCategories(cfg.Places.CategoryFile); err != nil {
		logger.WithError(err).Warn("Failed to load place categories, using defaults")
	}

	// Open the import archive
	store, err := archive.NewStore(cfg.Archive.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open import archive")
	}

	sess := session.New(logger)

	// Rehydrate the most recent import so a restart is not an empty session
	if importID, importedAt, projects, ok, err := store.LatestImport(); err != nil {
		logger.WithError(err).Error("Failed to rehydrate archived import")
	} else if ok {
		sess.RestoreDataset(importID, importedAt, projects)
		logger.WithFields(logrus.Fields{
			"import_id": importID,
			"projects":  len(projects),
		}).Info("Rehydrated latest archived import")
	}

	// Background archive writer
	importQueue := queue.NewImportQueue(cfg.Archive.QueueSize, logger)
	writer := processor.NewArchiveWriter(store, importQueue, cfg, logger)
	writer.Start()
	importQueue.Start()
	defer importQueue.Close()

	// Nearby-places client and debounced fetcher
	placesClient := places.NewClient(
		logger,
		cfg.Places.Endpoints,
		time.Duration(cfg.Places.TimeoutSec)*time.Second,
		cfg.Places.RatePerSecond,
	)
	fetcher := places.NewFetcher(
		logger,
		placesClient,
		sess,
		time.Duration(cfg.Places.DebounceMS)*time.Millisecond,
		time.Duration(cfg.Places.TimeoutSec)*time.Second,
	)

	handler := api.NewHandler(sess, importQueue, fetcher, logger)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) == 1 && cfg.Server.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	api.SetupRoutes(router, handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
