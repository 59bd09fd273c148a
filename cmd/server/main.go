package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yusufkecer/medfit-backend/internal/config"
	"github.com/yusufkecer/medfit-backend/internal/db"
	"github.com/yusufkecer/medfit-backend/internal/events"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
	"github.com/yusufkecer/medfit-backend/internal/server"
	"github.com/yusufkecer/medfit-backend/internal/service"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.InitLogger(cfg)

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable must be set")
	}

	profile, err := metrics.ProfileByName(cfg.ResultProfile)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid RESULT_PROFILE")
	}
	dialect, err := db.DialectFor(cfg.DBBackend)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DB_BACKEND")
	}

	if err := db.RunMigrations(cfg); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher = events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	router := server.NewRouter(server.Deps{
		Config:    cfg,
		DB:        database,
		Dialect:   dialect,
		Profile:   profile,
		Publisher: publisher,
		Mailer:    service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("profile", profile.Name).Str("backend", string(dialect)).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
