package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/sngm3741/restaurant-graph/api/internal/common/errors"
	"github.com/sngm3741/restaurant-graph/api/internal/common/logger"
	"github.com/sngm3741/restaurant-graph/api/internal/config"
	mongodoc "github.com/sngm3741/restaurant-graph/api/internal/infrastructure/mongo"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/domain"
)

type seedOptions struct {
	envFile         string
	dropCollections bool
}

// seedStore is the subset of the restaurant repository the seeder uses.
type seedStore interface {
	Drop(ctx context.Context) error
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, restaurant *domain.Restaurant) error
}

type seedResult struct {
	inserted int
	skipped  int
}

func main() {
	if err := run(parseFlags()); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run(opts seedOptions) error {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	cfg, err := config.LoadStore(envFiles...)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	seedLogger, err := logger.NewStructured(cfg.Logging.Level, "console")
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() { _ = seedLogger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			seedLogger.WithError(err).Warn("mongo disconnect failed", nil)
		}
	}()

	repo := mongodoc.NewRestaurantRepository(client.Database(cfg.MongoDatabase), cfg.RestaurantCollection)
	result, err := seed(ctx, repo, sampleRestaurants(time.Now().UTC()), opts.dropCollections, seedLogger)
	if err != nil {
		return err
	}

	seedLogger.Info("seed complete", map[string]interface{}{
		"inserted":   result.inserted,
		"skipped":    result.skipped,
		"database":   cfg.MongoDatabase,
		"collection": cfg.RestaurantCollection,
	})
	return nil
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envFile, "env", "", "dotenv file to load before reading the environment")
	flag.BoolVar(&opts.dropCollections, "drop", false, "drop the restaurant collection before inserting")
	flag.Parse()
	return opts
}

// seed inserts every restaurant that is not already present. A phone that is
// already stored is logged and skipped.
func seed(ctx context.Context, store seedStore, restaurants []domain.Restaurant, drop bool, log logger.Logger) (seedResult, error) {
	var result seedResult

	if drop {
		if err := store.Drop(ctx); err != nil {
			// Drop on a missing collection is not fatal.
			log.WithError(err).Warn("failed to drop restaurant collection", nil)
		} else {
			log.Info("dropped restaurant collection", nil)
		}
	}

	if err := store.EnsureIndexes(ctx); err != nil {
		return result, err
	}

	for i := range restaurants {
		restaurant := restaurants[i]
		if err := store.Insert(ctx, &restaurant); err != nil {
			if apperrors.IsCode(err, apperrors.ErrCodeDuplicatePhone) {
				log.Warn("restaurant already seeded", map[string]interface{}{
					"name":  restaurant.Name,
					"phone": restaurant.Phone,
				})
				result.skipped++
				continue
			}
			return result, err
		}
		log.Debug("restaurant seeded", map[string]interface{}{"id": restaurant.ID, "name": restaurant.Name})
		result.inserted++
	}
	return result, nil
}

// sampleRestaurants carries pre-derived enrichment data so seeding never
// calls the upstream API.
func sampleRestaurants(now time.Time) []domain.Restaurant {
	return []domain.Restaurant{
		{
			Name:        "Casa Lucio",
			Address:     "Calle Cava Baja 35",
			City:        "Madrid",
			Country:     "ES",
			Phone:       "+34913653252",
			Timezone:    "Europe/Madrid",
			Coordinates: domain.Coordinates{Latitude: 40.4167, Longitude: -3.7033},
			CreatedAt:   now,
		},
		{
			Name:        "Botín",
			Address:     "Calle de Cuchilleros 17",
			City:        "Madrid",
			Country:     "ES",
			Phone:       "+34913664217",
			Timezone:    "Europe/Madrid",
			Coordinates: domain.Coordinates{Latitude: 40.4167, Longitude: -3.7033},
			CreatedAt:   now,
		},
		{
			Name:        "Dishoom",
			Address:     "12 Upper St Martin's Lane",
			City:        "London",
			Country:     "GB",
			Phone:       "+442074209320",
			Timezone:    "Europe/London",
			Coordinates: domain.Coordinates{Latitude: 51.5073, Longitude: -0.1276},
			CreatedAt:   now,
		},
		{
			Name:        "Katz's Delicatessen",
			Address:     "205 E Houston St",
			City:        "New York",
			Country:     "US",
			Phone:       "+12122542246",
			Timezone:    "America/New_York",
			Coordinates: domain.Coordinates{Latitude: 40.7128, Longitude: -74.006},
			CreatedAt:   now,
		},
		{
			Name:        "Sukiyabashi Jiro",
			Address:     "4-2-15 Ginza, Chuo City",
			City:        "Tokyo",
			Country:     "JP",
			Phone:       "+81335353600",
			Timezone:    "Asia/Tokyo",
			Coordinates: domain.Coordinates{Latitude: 35.6895, Longitude: 139.6917},
			CreatedAt:   now,
		},
	}
}
