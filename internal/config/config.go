package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings shared by the services.
// Required keys have no fallback: a missing value fails startup.
type Config struct {
	Port           string
	DatabaseDSN    string
	JWTSecret      string
	JWTTTL         time.Duration
	JWTRefreshTTL  time.Duration
	AMQPURL        string
	UsersQueue     string
	StorageDir     string
	EventsExchange string
	Environment    string
	DebugRoutes    bool
}

// Load reads configuration from the environment, loading .env first if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		StorageDir:     getEnv("STORAGE_DIR", "./storage"),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "youapp.events"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		DebugRoutes:    os.Getenv("DEBUG_ROUTES") == "true",
	}

	var err error
	if cfg.Port, err = requireEnv("APP_PORT"); err != nil {
		return Config{}, err
	}
	if cfg.DatabaseDSN, err = requireEnv("DB_DSN"); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return Config{}, err
	}
	if cfg.AMQPURL, err = requireEnv("AMQP_URL"); err != nil {
		return Config{}, err
	}
	if cfg.UsersQueue, err = requireEnv("USERS_QUEUE"); err != nil {
		return Config{}, err
	}
	if cfg.JWTTTL, err = requireDuration("JWT_TTL"); err != nil {
		return Config{}, err
	}
	if cfg.JWTRefreshTTL, err = requireDuration("JWT_REFRESH_TTL"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env %s", key)
	}
	return val, nil
}

func requireDuration(key string) (time.Duration, error) {
	raw, err := requireEnv(key)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
