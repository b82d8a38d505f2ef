// internal/config/config.go
//
// Process configuration from the environment.
// A .env file in the working directory is loaded first (best effort); real
// environment variables win over it.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// DevSecret is the window-token secret used when JWT_SECRET is unset.
const DevSecret = "dev_secret_change_me"

// Config is everything main needs to wire the server.
type Config struct {
	Port         string `env:"PORT"          envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	NodeEnv      string `env:"NODE_ENV"      envDefault:"development"`

	OpenAIKey             string        `env:"OPENAI_API_KEY"`
	ViteOpenAIKey         string        `env:"VITE_OPENAI_API_KEY"`
	OpenAIBaseURL         string        `env:"OPENAI_BASE_URL"`
	OpenAIModel           string        `env:"OPENAI_MODEL"           envDefault:"gpt-4o-mini"`
	CompletionTimeout     time.Duration `env:"COMPLETION_TIMEOUT"     envDefault:"30s"`
	CompletionMaxTokens   int64         `env:"COMPLETION_MAX_TOKENS"  envDefault:"500"`
	CompletionTemperature float64       `env:"COMPLETION_TEMPERATURE" envDefault:"0.7"`

	JWTSecret  string        `env:"JWT_SECRET"  envDefault:"dev_secret_change_me"`
	WindowTTL  time.Duration `env:"WINDOW_TTL"  envDefault:"24h"`
	CookieName string        `env:"COOKIE_NAME" envDefault:"companion_window"`

	DBPath       string `env:"DB_PATH"`
	RiddlesFile  string `env:"RIDDLES_FILE"`
	SymbolsFile  string `env:"SYMBOLS_FILE"`
	DeckSeed     string `env:"DECK_SEED"`
	SoundEnabled bool   `env:"SOUND_ENABLED" envDefault:"true"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.WindowTTL <= 0 {
		return errors.New("WINDOW_TTL must be positive")
	}
	if c.CompletionTimeout < 0 {
		return errors.New("COMPLETION_TIMEOUT must not be negative")
	}
	if c.Production() && c.JWTSecret == DevSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// APIKey returns the completion credential, accepting the legacy
// VITE_OPENAI_API_KEY name as a fallback.
func (c Config) APIKey() string {
	if k := strings.TrimSpace(c.OpenAIKey); k != "" {
		return k
	}
	return strings.TrimSpace(c.ViteOpenAIKey)
}

// Production reports whether NODE_ENV is production.
func (c Config) Production() bool { return c.NodeEnv == "production" }

// Level is the parsed LOG_LEVEL (info if invalid).
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
