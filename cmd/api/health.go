package main

import (
	"context"
	"time"

	"github.com/ajinkyamaster/storefront/internal/catalog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	catalogService   = "catalog"
	healthCheckEvery = 10 * time.Second
)

// newHealthServer serves grpc.health.v1 for orchestrator health checks. The
// catalog service status follows repo.Ping until ctx is done.
func newHealthServer(ctx context.Context, repo catalog.Repository, tp trace.TracerProvider, l *zap.Logger) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler(otelgrpc.WithTracerProvider(tp))),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	go watchCatalog(ctx, repo, healthServer, l)
	return grpcServer
}

func watchCatalog(ctx context.Context, repo catalog.Repository, hs *health.Server, l *zap.Logger) {
	ticker := time.NewTicker(healthCheckEvery)
	defer ticker.Stop()

	for {
		status := catalogStatus(ctx, repo, l)
		hs.SetServingStatus(catalogService, status)
		hs.SetServingStatus("", status)

		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

func catalogStatus(ctx context.Context, repo catalog.Repository, l *zap.Logger) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := repo.Ping(pingCtx); err != nil {
		l.Warn("catalog ping failed", zap.Error(err))
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
