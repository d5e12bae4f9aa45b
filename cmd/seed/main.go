// Command seed replaces the catalog collection with the demo products.
package main

import (
	"context"
	"log"
	"time"

	"github.com/ajinkyamaster/storefront/internal/catalog"
	"github.com/ajinkyamaster/storefront/internal/config"
	"github.com/ajinkyamaster/storefront/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := catalog.ConnectMongoDB(ctx, catalog.MongoOptions{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		MinPoolSize:    cfg.Mongo.MinPoolSize,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
	if err != nil {
		l.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer db.Client().Disconnect(context.Background())
	l.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	repo := catalog.NewMongoRepository(db)
	inserted, err := repo.Seed(ctx, catalog.DemoProducts())
	if err != nil {
		l.Fatal("Failed to seed products", zap.Error(err))
	}
	if err := repo.CreateIndexes(ctx); err != nil {
		l.Fatal("Failed to create indexes", zap.Error(err))
	}

	for _, p := range inserted {
		l.Info("Seeded product", zap.String("id", p.ID), zap.String("name", p.Name), zap.Float64("price", p.Price))
	}
	l.Info("Database seeded successfully", zap.Int("count", len(inserted)))
}
