package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/companion/internal/companion"
	"github.com/robalobadob/companion/internal/config"
	"github.com/robalobadob/companion/internal/content"
	"github.com/robalobadob/companion/internal/cue"
	"github.com/robalobadob/companion/internal/httpserver"
	"github.com/robalobadob/companion/internal/llm"
	"github.com/robalobadob/companion/internal/schedule"
	"github.com/robalobadob/companion/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	lib, err := content.Load(cfg.RiddlesFile, cfg.SymbolsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load game content")
	}

	ledger, err := openLedger(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open results ledger")
	}
	defer ledger.Close()

	completer := llm.NewClient(llm.Config{
		APIKey:      cfg.APIKey(),
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.CompletionMaxTokens,
		Temperature: cfg.CompletionTemperature,
		Timeout:     cfg.CompletionTimeout,
	})
	if !completer.Configured() {
		log.Warn().Msg("no OpenAI API key found; chat will use fallback replies")
	}

	win := companion.NewWindow(companion.Config{
		Content:           lib,
		Completer:         completer,
		CompletionTimeout: cfg.CompletionTimeout,
		Ledger:            ledger,
		Scheduler:         schedule.Real{},
		CuePlayer:         cue.LogPlayer{Logger: log.Logger},
		SoundEnabled:      cfg.SoundEnabled,
		DeckSeed:          cfg.DeckSeed,
		Logger:            log.Logger,
	})
	defer win.Shutdown(context.Background())

	srv := httpserver.New(win, ledger, httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		Production:     cfg.Production(),
		JWTSecret:      cfg.JWTSecret,
		WindowTTL:      cfg.WindowTTL,
		CookieName:     cfg.CookieName,
		HandlerTimeout: cfg.CompletionTimeout + 15*time.Second,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		win.Shutdown(context.Background())
		_ = ledger.Close()
		os.Exit(0)
	}()

	log.Info().Str("port", cfg.Port).Int("symbols", len(lib.Symbols)).Int("riddles", len(lib.Riddles)).Msg("starting companion server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openLedger picks SQLite when DB_PATH is set, memory otherwise.
func openLedger(cfg config.Config) (store.Ledger, error) {
	if cfg.DBPath == "" {
		return store.NewMemoryLedger(0), nil
	}
	l, err := store.OpenSQLite(cfg.DBPath, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", cfg.DBPath).Msg("results ledger on sqlite")
	return l, nil
}
