package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajinkyamaster/storefront/internal/catalog"
	"github.com/ajinkyamaster/storefront/internal/config"
	h "github.com/ajinkyamaster/storefront/internal/http"
	"github.com/ajinkyamaster/storefront/internal/submission"
	"github.com/ajinkyamaster/storefront/pkg/logger"
	"github.com/ajinkyamaster/storefront/pkg/tracing"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"google.golang.org/grpc"
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
	zap.ReplaceGlobals(l)

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:  "storefront-api",
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		l.Fatal("Failed to set up tracing", zap.Error(err))
	}

	repo, closeRepo, err := openCatalog(ctx, cfg, l)
	if err != nil {
		l.Fatal("Failed to open catalog", zap.String("driver", cfg.CatalogDriver), zap.Error(err))
	}
	defer closeRepo()

	// Redis cache in front of the catalog
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			l.Fatal("Redis connection failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		l.Info("Redis ping succeeded", zap.String("addr", cfg.Redis.Addr))
		repo = catalog.NewCachedRepository(repo, redisClient, cfg.Redis.CacheTTL, l)
	}

	var opts []submission.Option
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := submission.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer publisher.Close()
		opts = append(opts, submission.WithPublisher(publisher))
		l.Info("Publishing cart submissions to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	submitter := submission.NewService(l, opts...)

	router := h.NewRouter(h.RouterConfig{
		Catalog:            repo,
		Submitter:          submitter,
		StaticDir:          cfg.StaticDir,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Logger:             l,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info("API server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

	var grpcServer *grpc.Server
	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	if cfg.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
		if err != nil {
			l.Fatal("Failed to listen", zap.String("port", cfg.GRPCHealthPort), zap.Error(err))
		}
		grpcServer = newHealthServer(healthCtx, repo, otel.GetTracerProvider(), l)
		go func() {
			l.Info("gRPC health server listening", zap.String("port", cfg.GRPCHealthPort))
			if err := grpcServer.Serve(lis); err != nil {
				l.Error("gRPC health server stopped", zap.Error(err))
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")
	stopHealth()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		l.Error("failed to flush traces", zap.Error(err))
	}

	l.Info("server exited")
}

// openCatalog connects the configured catalog driver and returns a function
// that releases it.
func openCatalog(ctx context.Context, cfg *config.API, l *zap.Logger) (catalog.Repository, func(), error) {
	switch cfg.CatalogDriver {
	case config.DriverSQLite:
		repo, err := catalog.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.RunMigrations(); err != nil {
			repo.Close()
			return nil, nil, err
		}
		l.Info("SQLite catalog ready", zap.String("path", cfg.SQLitePath))
		return repo, func() { repo.Close() }, nil

	default:
		db, err := catalog.ConnectMongoDB(ctx, catalog.MongoOptions{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			MaxPoolSize:    cfg.Mongo.MaxPoolSize,
			MinPoolSize:    cfg.Mongo.MinPoolSize,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		l.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		return catalog.NewMongoRepository(db), func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(disconnectCtx)
		}, nil
	}
}
