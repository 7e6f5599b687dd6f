package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Meet/internal/adapters/http"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/auth"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	verifier := auth.NewVerifier(cfg.Secret)

	var (
		recorder core.ParticipationRecorder = store.NoopRecorder{}
		meta     core.RoomMetaSource        = store.OpenMetaSource{}
	)
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open store")
		}
		defer db.Close()
		rec := store.NewAsyncRecorder(db, cfg.RecorderBuffer)
		defer rec.Close()
		recorder = rec
		meta = db
	}

	coord := app.NewCoordinator(app.NewRegistry(), verifier, recorder, meta)

	r := router.SetupRouter(ctx, cfg, coord)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Meet server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
