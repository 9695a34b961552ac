package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lucaprinsss/Participium-sub003/core/db"
)

type Config struct {
	Telegram    TelegramConfig
	Geocoder    GeocoderConfig
	Boundary    BoundaryConfig
	ReportAPI   ReportAPIConfig
	Redis       RedisConfig
	OTel        OTelConfig
	DB          db.Config
	Env         string
	Port        string
	NodeID      int64
	CallTimeout time.Duration // upper bound for every external call made while handling an update
}

type TelegramMode string

const (
	TelegramModeWebhook TelegramMode = "webhook"
	TelegramModePolling TelegramMode = "polling"
)

type TelegramConfig struct {
	Token         string
	Mode          TelegramMode
	WebhookSecret string // compared against X-Telegram-Bot-Api-Secret-Token
	PollTimeout   int    // seconds, long polling only
	MaxPhotoBytes int64
}

type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	CityBias  string // appended to free-text queries, e.g. "Torino, Italia"
}

type BoundaryConfig struct {
	Name        string
	GeoJSONPath string // empty means the embedded Turin boundary
}

type ReportAPIConfig struct {
	BaseURL      string
	ServiceToken string
}

type RedisConfig struct {
	URL       string
	DedupeTTL time.Duration
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string
	SampleRatio    float64 // fraction of root spans kept, 1 keeps every update
}

// Load reads configuration from the environment. In development a .env file
// in the working directory is loaded first.
func Load() (Config, error) {
	if getEnv("INTAKE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:         getEnv("INTAKE_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		NodeID:      int64(getEnvInt("NODE_ID", 1)),
		CallTimeout: getEnvDuration("EXTERNAL_CALL_TIMEOUT", 10*time.Second),
		Telegram: TelegramConfig{
			Token:         getEnv("TELEGRAM_BOT_TOKEN", ""),
			Mode:          TelegramMode(strings.ToLower(getEnv("TELEGRAM_MODE", string(TelegramModePolling)))),
			WebhookSecret: getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
			PollTimeout:   getEnvInt("TELEGRAM_POLL_TIMEOUT", 60),
			MaxPhotoBytes: int64(getEnvInt("TELEGRAM_MAX_PHOTO_BYTES", 10<<20)),
		},
		Geocoder: GeocoderConfig{
			BaseURL:   getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "participium-telegram-bot"),
			CityBias:  getEnv("GEOCODER_CITY_BIAS", "Torino, Italia"),
		},
		Boundary: BoundaryConfig{
			Name:        getEnv("BOUNDARY_NAME", "Turin"),
			GeoJSONPath: getEnv("BOUNDARY_GEOJSON", ""),
		},
		ReportAPI: ReportAPIConfig{
			BaseURL:      strings.TrimRight(getEnv("REPORT_API_URL", ""), "/"),
			ServiceToken: getEnv("REPORT_API_TOKEN", ""),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			DedupeTTL: getEnvDuration("REDIS_DEDUPE_TTL", 10*time.Minute),
		},
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "participium-intake"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}

	cfg.OTel.Environment = cfg.Env

	if cfg.Telegram.Token == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.Telegram.Mode != TelegramModeWebhook && cfg.Telegram.Mode != TelegramModePolling {
		return Config{}, fmt.Errorf("TELEGRAM_MODE must be %q or %q, got %q", TelegramModeWebhook, TelegramModePolling, cfg.Telegram.Mode)
	}
	if cfg.ReportAPI.BaseURL == "" {
		return Config{}, fmt.Errorf("REPORT_API_URL is required")
	}
	if cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c TelegramConfig) UsesWebhook() bool {
	return c.Mode == TelegramModeWebhook
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
