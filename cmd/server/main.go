package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freedom_case_2/opsmetrics/internal/config"
	"github.com/freedom_case_2/opsmetrics/internal/db"
	"github.com/freedom_case_2/opsmetrics/internal/docstore"
	httpapi "github.com/freedom_case_2/opsmetrics/internal/http"
	"github.com/freedom_case_2/opsmetrics/internal/http/handlers"
	"github.com/freedom_case_2/opsmetrics/internal/service"
	"github.com/freedom_case_2/opsmetrics/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "opsmetrics").Str("env", cfg.Env).Logger()

	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, cfg.OTel())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up telemetry")
	}

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	docs, err := docstore.Open(ctx, docstore.Config{
		Driver:         cfg.DocStoreDriver,
		MongoURI:       cfg.MongoURI,
		MongoDatabase:  cfg.MongoDatabase,
		ArangoURL:      cfg.ArangoURL,
		ArangoUsername: cfg.ArangoUsername,
		ArangoPassword: cfg.ArangoPassword,
		ArangoDatabase: cfg.ArangoDatabase,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DocStoreDriver).Msg("failed to connect document store")
	}
	logger.Info().Str("driver", cfg.DocStoreDriver).Msg("document store connected")

	metrics := &service.MetricsService{
		Cases:     store,
		Surveys:   store,
		FollowUps: store,
		Logger:    logger.With().Str("component", "metrics").Logger(),
	}
	h := &handlers.Handler{
		Metrics: metrics,
		Cases: &service.CaseService{
			Cases:  store,
			Logger: logger.With().Str("component", "cases").Logger(),
		},
		Conversations: &service.ConversationService{
			Conversations: docs,
			Messages:      docs,
			Logger:        logger.With().Str("component", "conversations").Logger(),
		},
		Satisfaction: &service.SatisfactionService{
			Surveys: store,
			Logger:  logger.With().Str("component", "satisfaction").Logger(),
		},
		Reports: &service.ReportService{
			Metrics: metrics,
			Cases:   store,
			Surveys: store,
			Logger:  logger.With().Str("component", "reports").Logger(),
		},
		Pingers: map[string]handlers.Pinger{
			"postgres": store,
			"docstore": docs,
		},
		Validator: validator.New(),
		Logger:    logger,
	}

	router := httpapi.Router(cfg, h, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	if err := docs.Close(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("document store close")
	}
	if err := tel.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("telemetry shutdown")
	}
	logger.Info().Msg("server stopped")
}
