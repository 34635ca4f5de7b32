package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dragon-duel-client/allocator"
	"dragon-duel-client/arena"
	"dragon-duel-client/client"
	"dragon-duel-client/config"
	"dragon-duel-client/health"
	"dragon-duel-client/metrics"
	"dragon-duel-client/queues"
	qpubsub "dragon-duel-client/queues/pubsub"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var version = "source"

func setLogger(level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func main() {
	setLogger(os.Getenv("DUEL_LOG_LEVEL"))
	log.Info().Msgf("Starting dragon-duel-client version: %s", version)
	cfg := config.Load()
	log.Info().Interface("config", cfg.Redacted()).Msg("config loaded")

	if cfg.UsesPubSub() && cfg.GoogleProjectID == "" {
		log.Fatal().Msg("missing Google project id; set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_PROJECT_ID or DUEL_PUBSUB_PROJECT_ID")
	}
	if cfg.Subscription != "" && cfg.ResultTopic == "" {
		log.Fatal().Msg("missing Pub/Sub topic; set BATTLE_RESULT_TOPIC or DUEL_PUBSUB_TOPIC")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	games := client.New(
		client.WithBaseURL(cfg.BaseURL),
		client.WithTimeout(cfg.Timeout),
		client.WithMaxConnsPerHost(cfg.MaxConnsPerHost),
		client.WithRealm(cfg.RealmUser, cfg.RealmPassword),
		client.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	// Metrics and health HTTP server
	mux := http.NewServeMux()
	metrics.Register(mux)
	health.Register(mux, func() bool { return !games.Closed() })

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr()).Msg("starting metrics/health server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	schedule := allocator.StandardSchedule
	if cfg.LegacySchedule {
		schedule = allocator.LegacySchedule
	}

	var publisher queues.Publisher = queues.LogPublisher{}
	var pubsubPublisher *qpubsub.Publisher
	if cfg.ResultTopic != "" {
		if cfg.CredentialsFile != "" {
			log.Info().Str("credsFile", cfg.CredentialsFile).Msg("using explicit Google credentials file")
		} else {
			log.Info().Msg("using default Google credentials (ambient)")
		}
		pubsubPublisher = qpubsub.NewPublisher(cfg.GoogleProjectID, cfg.ResultTopic, cfg.CredentialsFile)
		publisher = pubsubPublisher
	}
	controller := arena.NewController(games, publisher, schedule, cfg.Concurrency, cfg.Weather)

	done := make(chan struct{})
	if cfg.Subscription != "" {
		subscriber := qpubsub.NewSubscriber(cfg.GoogleProjectID, cfg.Subscription, cfg.CredentialsFile, cfg.Concurrency)
		go func() {
			defer close(done)
			log.Info().Str("subscription", cfg.Subscription).Msg("starting subscriber loop")
			if err := subscriber.Start(ctx, controller.Handle); err != nil {
				// Non-recoverable: if we can't receive from Pub/Sub, terminate the process
				log.Fatal().Err(err).Msg("subscriber exited with fatal error; shutting down")
			}
		}()
	} else {
		go func() {
			defer close(done)
			defer stop()
			req := &queues.BattleRequest{BattleID: uuid.NewString(), Rounds: cfg.Rounds}
			if err := controller.Handle(ctx, req); err != nil {
				log.Error().Err(err).Str("battleId", req.BattleID).Msg("battle could not be reported")
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case <-done:
	}

	// Refuse new calls and wait for the ones in flight
	games.CloseAsync()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	select {
	case <-games.Drained():
	case <-shutdownCtx.Done():
		log.Warn().Interface("inflight", games.Inflight()).Msg("game client did not drain before shutdown timeout")
	}

	if pubsubPublisher != nil {
		if err := pubsubPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("pubsub publisher close failed")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server graceful shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
