package main

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/restaurant-graph/api/internal/common/logger"
	"github.com/sngm3741/restaurant-graph/api/internal/config"
	"github.com/sngm3741/restaurant-graph/api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.WithError(err).Error("mongo connect failed", nil)
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}

	app, err := server.New(cfg, client, appLogger)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}
	if err := app.Run(); err != nil {
		appLogger.WithError(err).Error("server stopped", nil)
		log.Fatalf("server failed: %v", err)
	}
}
