package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/ci-classification-metrics/internal/aggregator"
	"github.com/kurihiro0119/ci-classification-metrics/internal/api"
	"github.com/kurihiro0119/ci-classification-metrics/internal/config"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source/postgres"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source/redash"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source/sqlite"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.NewEntry(logger).WithField("component", "api")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize source
	var src source.Source
	switch source.Type(cfg.SourceType) {
	case source.TypeFile:
		src = source.NewFileSource(cfg.SourceFile)
	case source.TypeSQLite:
		src, err = sqlite.NewSQLiteSource(cfg.SQLitePath)
		if err != nil {
			log.WithError(err).Fatal("Failed to open SQLite source")
		}
	case source.TypePostgres:
		src, err = postgres.NewPostgresSource(cfg.PostgresURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to PostgreSQL source")
		}
	default:
		src = redash.NewRedashSource(cfg.RedashURL, cfg.RedashQueryID, cfg.RedashAPIKey, cfg.FetchTimeout, log)
	}
	defer src.Close()

	// Initialize aggregator
	agg := aggregator.NewAggregator(src, log)

	// Initialize handler
	handler := api.NewHandler(agg, cfg.Params())

	// Setup routes
	router := api.SetupRoutes(handler, log)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.WithFields(logrus.Fields{"addr": addr, "source": cfg.SourceType}).Info("Starting API server")

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
