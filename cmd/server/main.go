package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/damon-houk/ppd-ingest-service/internal/application/service"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/config"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/feed"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/handler"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, cfg.LogLevel)
	logger.SetDefaultLogger(log)

	log.Info("Starting price paid data ingestion service", map[string]interface{}{
		"port":    cfg.Server.Port,
		"backend": cfg.Store.Backend,
		"feed":    cfg.Feed.URL,
	})

	store, closeStore, err := openStore(context.Background(), cfg.Store, log)
	if err != nil {
		log.Fatal("Failed to open record store", map[string]interface{}{
			"backend": cfg.Store.Backend,
			"error":   err.Error(),
		})
	}
	defer closeStore()

	feedClient := feed.NewLandRegistryClient(cfg.Feed.URL, &http.Client{Timeout: cfg.Feed.Timeout}, log.WithField("component", "feed"))

	// Initialize services
	ingestionService := service.NewIngestionService(store, feedClient, log)
	recordService := service.NewRecordService(store, log)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.MetricsMiddleware)

	handler.NewRecordHandler(ingestionService, recordService, log).RegisterRoutes(router)
	handler.NewSystemHandler(store, log).RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	log.Info("Server stopped", nil)
}
