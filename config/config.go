package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPAddr    string
	Storage     string
	DatabaseURL string
	RedisURL    string
	LogLevel    logrus.Level

	JWTSecret      []byte
	JWTIssuer      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	SessionTimeout       time.Duration
	SessionSweepInterval time.Duration
	VerificationTokenTTL time.Duration
	EmailTokenTTL        time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPAddr:    envString("HTTP_ADDR", ":8080"),
		Storage:     strings.ToLower(envString("STORAGE", StoragePostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer:   envString("JWT_ISSUER", "lms"),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	level, err := logrus.ParseLevel(envString("LOG_LEVEL", "info"))
	if err != nil {
		collect(fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	cfg.AccessTokenTTL, err = envDuration("ACCESS_TOKEN_TTL", time.Hour)
	collect(err)
	cfg.BcryptCost, err = envInt("BCRYPT_COST", 0)
	collect(err)
	cfg.SessionTimeout, err = envDuration("SESSION_TIMEOUT", 30*time.Minute)
	collect(err)
	cfg.SessionSweepInterval, err = envDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute)
	collect(err)
	cfg.VerificationTokenTTL, err = envDuration("VERIFICATION_TOKEN_TTL", 30*time.Minute)
	collect(err)
	cfg.EmailTokenTTL, err = envDuration("EMAIL_TOKEN_TTL", 24*time.Hour)
	collect(err)

	if len(cfg.JWTSecret) == 0 {
		collect(errors.New("JWT_SECRET is required"))
	}
	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			collect(errors.New("DATABASE_URL is required when STORAGE=postgres"))
		}
	case StorageMemory:
	default:
		collect(fmt.Errorf("STORAGE: unsupported value %q", cfg.Storage))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	if value <= 0 {
		return fallback, fmt.Errorf("%s: must be positive", key)
	}
	return value, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
