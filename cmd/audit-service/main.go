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
	"github.com/synaptica-ai/life-expectancy/pkg/audit"
	"github.com/synaptica-ai/life-expectancy/pkg/common/config"
	"github.com/synaptica-ai/life-expectancy/pkg/common/database"
	"github.com/synaptica-ai/life-expectancy/pkg/common/kafka"
	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/gateway/auth"
	"github.com/synaptica-ai/life-expectancy/pkg/gateway/middleware"
)

func main() {
	logger.Init("audit-service")
	cfg := config.Load()

	db, err := database.GetPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePostgres()

	repo := audit.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate prediction log table")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaPredictionTopic, cfg.KafkaGroupID)
	defer consumer.Close()
	go func() {
		logger.Log.WithField("topic", cfg.KafkaPredictionTopic).Info("Consuming prediction events")
		if err := consumer.Consume(ctx, audit.Handle(repo)); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("Prediction consumer stopped")
		}
	}()

	oidcAuth, err := auth.FromConfig(cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret)
	if err != nil {
		logger.Log.WithError(err).WithField("issuer", cfg.OIDCIssuer).Fatal("Invalid OIDC configuration")
	}
	if oidcAuth == nil {
		logger.Log.Warn("OIDC_ISSUER not set, audit API running without auth")
	}

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	if oidcAuth != nil {
		api.Use(middleware.Authenticate(oidcAuth))
	}
	audit.NewHTTPHandler(repo).Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.AuditPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.AuditPort,
		}).Info("Audit Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Audit Service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Audit Service stopped")
}
