package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/scythe504/wordsearch-backend/internal"
	"github.com/scythe504/wordsearch-backend/internal/database"
	"github.com/scythe504/wordsearch-backend/internal/dictionary"
	"github.com/scythe504/wordsearch-backend/internal/game"
	"github.com/scythe504/wordsearch-backend/internal/server"
	"github.com/scythe504/wordsearch-backend/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

func main() {
	setupLogger()

	port, err := strconv.Atoi(getEnv("PORT", "3000"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid PORT")
	}
	duration, err := time.ParseDuration(getEnv("GAME_DURATION", internal.GameDuration.String()))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid GAME_DURATION")
	}

	dict, err := dictionary.Load(os.Getenv("WORDS_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}
	log.Info().Int("words", dict.Len()).Msg("dictionary loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openArchive(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	hub := websocket.NewHub()
	opts := game.Options{GameDuration: duration}
	if db != nil {
		opts.Results = db
	}
	manager := game.NewManager(hub, dict, opts)
	srv := server.NewServer(port, manager, hub, db)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Int("port", port).Dur("game_duration", duration).Msg("wordsearch server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
	}
	if db != nil {
		_ = db.Close()
	}
	log.Info().Msg("graceful shutdown complete")
}

func setupLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if getEnv("LOG_FORMAT", "console") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openArchive returns nil when DB_HOST is unset.
func openArchive(ctx context.Context) (database.Service, error) {
	cfg, err := database.ConfigFromEnv()
	if errors.Is(err, database.ErrDisabled) {
		log.Info().Msg("DB_HOST not set, results archive disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return database.New(connectCtx, cfg)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
