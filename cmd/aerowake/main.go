package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/cianfru/aerowake/internal/airports"
	"github.com/cianfru/aerowake/internal/api"
	"github.com/cianfru/aerowake/internal/store"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds application configuration.
type Config struct {
	HTTPAddr string
	HTTPPort int

	// StoreBackend selects "postgres" or "memory".
	StoreBackend string

	LogLevel  string
	LogPretty bool
}

func loadConfig() Config {
	// Missing .env is fine: environment variables win either way.
	_ = godotenv.Load()

	return Config{
		HTTPAddr:     getEnv("HTTP_ADDR", "0.0.0.0"),
		HTTPPort:     getEnvInt("HTTP_PORT", 8080),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnvBool("LOG_PRETTY", false),
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func newLogger(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.LogPretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	log := newLogger(cfg)

	var st store.Store
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := store.OpenPostgres()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres store unavailable")
		}
		st = pg
		log.Info().Msg("using postgres store")
	case "memory":
		st = store.NewMemory()
		log.Info().Msg("using in-memory store; analyses will not survive restarts")
	default:
		log.Fatal().Str("backend", cfg.StoreBackend).Msg("unknown STORE_BACKEND")
	}
	defer st.Close()

	reg := airports.New()
	server := api.NewServer(log, reg, st)

	addr := fmt.Sprintf("%s:%d", cfg.HTTPAddr, cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Int("airports", reg.Len()).Msg("aerowake listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	log.Info().Msg("aerowake stopped")
}
