package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment string
	LogLevel    string

	DBDSN      string
	DBMaxConns int32
	DBMinConns int32
	Storage    string

	HTTPAddr         string
	CORSOrigins      []string
	BookingRateLimit int

	TelegramToken string

	Timezone *time.Location

	ArchiveCron     string
	PassedSweepCron string
	JobLockTTL      time.Duration

	RedisAddr     string
	RedisPassword string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из getenv; пустые значения заменяются дефолтными
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Environment:     get("ENV", "development"),
		LogLevel:        strings.ToLower(get("LOG_LEVEL", "info")),
		DBDSN:           getenv("DB_DSN"),
		Storage:         strings.ToLower(get("STORAGE", StoragePostgres)),
		HTTPAddr:        get("HTTP_ADDR", ":8080"),
		TelegramToken:   getenv("TELEGRAM_TOKEN"),
		ArchiveCron:     get("ARCHIVE_CRON", "0 0 * * *"),
		PassedSweepCron: get("PASSED_SWEEP_CRON", "*/15 6-22 * * *"),
		RedisAddr:       getenv("REDIS_ADDR"),
		RedisPassword:   getenv("REDIS_PASSWORD"),
	}

	for _, origin := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	var err error
	if cfg.DBMaxConns, err = parseInt32("DB_MAX_CONNS", get("DB_MAX_CONNS", "10")); err != nil {
		return nil, err
	}
	if cfg.DBMinConns, err = parseInt32("DB_MIN_CONNS", get("DB_MIN_CONNS", "2")); err != nil {
		return nil, err
	}
	if cfg.BookingRateLimit, err = strconv.Atoi(get("BOOKING_RATE_LIMIT", "20")); err != nil || cfg.BookingRateLimit <= 0 {
		return nil, fmt.Errorf("BOOKING_RATE_LIMIT must be a positive integer")
	}
	if cfg.JobLockTTL, err = time.ParseDuration(get("JOB_LOCK_TTL", "2m")); err != nil {
		return nil, fmt.Errorf("JOB_LOCK_TTL: %w", err)
	}
	if cfg.JobLockTTL < time.Second {
		return nil, fmt.Errorf("JOB_LOCK_TTL must be at least 1s, got %s", cfg.JobLockTTL)
	}
	if cfg.Timezone, err = time.LoadLocation(get("TIMEZONE", "Europe/Sofia")); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	// Проверяем cron-выражения заранее, чтобы не упасть при старте планировщика
	for key, spec := range map[string]string{"ARCHIVE_CRON": cfg.ArchiveCron, "PASSED_SWEEP_CRON": cfg.PassedSweepCron} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}

	return cfg, nil
}

func parseInt32(key, value string) (int32, error) {
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return int32(n), nil
}
