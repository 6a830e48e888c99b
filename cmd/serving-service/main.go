package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/life-expectancy/pkg/assets"
	"github.com/synaptica-ai/life-expectancy/pkg/bundle"
	"github.com/synaptica-ai/life-expectancy/pkg/common/config"
	"github.com/synaptica-ai/life-expectancy/pkg/common/database"
	"github.com/synaptica-ai/life-expectancy/pkg/common/kafka"
	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/gateway/httpclient"
	"github.com/synaptica-ai/life-expectancy/pkg/gateway/middleware"
	"github.com/synaptica-ai/life-expectancy/pkg/serving"
	"github.com/synaptica-ai/life-expectancy/pkg/serving/predictor"
	"github.com/synaptica-ai/life-expectancy/pkg/storage"
)

func main() {
	logger.Init("serving-service")
	cfg := config.Load()

	// A remote backend only needs feature names, encoders and columns from
	// the bundle; local scoring also needs its weights.
	var backend bundle.Model
	if cfg.ModelBackend == "remote" {
		remote, err := predictor.NewRemote(cfg.ModelEndpoint, httpclient.New(cfg.ModelTimeout), cfg.ModelRetries)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to configure remote model backend")
		}
		backend = remote
	}
	modelBundle, err := bundle.LoadWith(cfg.BundlePath, backend)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load model bundle")
	}
	logger.Log.WithFields(map[string]interface{}{
		"bundle":  cfg.BundlePath,
		"backend": cfg.ModelBackend,
		"columns": len(modelBundle.Columns),
		"country": modelBundle.HasCountry(),
	}).Info("Model bundle loaded")

	catalog, err := assets.LoadCatalog(cfg.AssetCatalogPath)
	if err != nil {
		logger.Log.WithError(err).Warn("Asset catalog unreadable, using defaults")
	}
	store := assets.NewStore(catalog, cfg.AssetDir)

	// Optional collaborators stay nil interfaces when disabled.
	var stats serving.StageCounter
	if cfg.StatsEnabled {
		stats = storage.NewStageStats(database.GetRedis(cfg), cfg.StatsKey)
		defer database.CloseRedis()
	}
	var publisher serving.EventPublisher
	if cfg.EventsEnabled {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaPredictionTopic)
		defer producer.Close()
		publisher = producer
	}

	service := serving.NewService(modelBundle, store, publisher, stats)

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	serving.NewHTTPHandler(service, store).Register(router)
	serving.NewUIHandler(service, store).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Serving Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Serving Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Serving Service stopped")
}
