package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajinkyamaster/storefront/internal/apiclient"
	"github.com/ajinkyamaster/storefront/internal/config"
	"github.com/ajinkyamaster/storefront/internal/storefront"
	"github.com/ajinkyamaster/storefront/pkg/logger"
	"github.com/ajinkyamaster/storefront/pkg/tracing"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadStorefront()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		ServiceName:  "storefront",
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		l.Fatal("Failed to set up tracing", zap.Error(err))
	}

	client := apiclient.NewClient(cfg.APIURL, l)
	handler := storefront.NewHandler(storefront.Config{
		API:            client,
		ImageBaseURL:   client.BaseURL(),
		Title:          cfg.StoreTitle,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         l,

		SessionIdleTimeout: cfg.SessionIdleTimeout,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go handler.ExpireSessions(sweepCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info("Storefront starting", zap.String("port", cfg.Port), zap.String("api_url", cfg.APIURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down storefront...")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		l.Error("failed to flush traces", zap.Error(err))
	}

	l.Info("storefront exited")
}
