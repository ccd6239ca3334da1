// Package config reads service settings from environment variables into an
// explicit struct, once, at startup. Components receive the struct (or the
// fields they need) by reference; nothing reads ambient global state later.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DBPath string

	// Telegram credentials are required: the worker refuses to start
	// without a notification target.
	TelegramBotToken string
	TelegramChatID   string

	PollInterval time.Duration
	NewsQuery    string
	UserAgent    string

	GeocodeTimeout     time.Duration
	GeocodeMinInterval time.Duration

	HTTPAddr        string // worker ops endpoints (healthz/readyz/metrics)
	APIAddr         string // read API + map front-end
	EventsMaxLimit  int
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. Missing Telegram credentials are a fatal configuration error.
func Load() (*Config, error) {
	pollInterval, err := parseSeconds("POLL_INTERVAL_SECONDS", 1800)
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseSeconds("GEOCODE_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	geocodeMinInterval, err := parseDuration("GEOCODE_MIN_INTERVAL", 1100*time.Millisecond)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	eventsMaxLimit, err := parseInt("EVENTS_MAX_LIMIT", 5000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:           envOrDefault("APP_DB_PATH", "/data/app.db"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		PollInterval:     pollInterval,
		NewsQuery: envOrDefault("NEWS_QUERY",
			"meteorite fell OR meteorite crash OR meteorite impact OR fireball landed"),
		UserAgent:          envOrDefault("USER_AGENT", "skyfall-alert-bot/1.0"),
		GeocodeTimeout:     geocodeTimeout,
		GeocodeMinInterval: geocodeMinInterval,
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		APIAddr:            envOrDefault("API_ADDR", ":8000"),
		EventsMaxLimit:     eventsMaxLimit,
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
	}

	if cfg.TelegramBotToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.TelegramChatID == "" {
		return nil, errors.New("TELEGRAM_CHAT_ID is required")
	}
	if cfg.NewsQuery == "" {
		return nil, errors.New("NEWS_QUERY must not be empty")
	}

	return cfg, nil
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseSeconds(name string, def int) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer of seconds", name)
	}
	return time.Duration(n) * time.Second, nil
}

func parseDuration(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", name)
	}
	return d, nil
}

func parseInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return n, nil
}
