package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Scheduling SchedulingConfig
	Worker     WorkerConfig
}

type AppConfig struct {
	Port     string
	Env      string
	Timezone string
	LogLevel string
	// AllowedOrigins is empty when any origin may call the API
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// SchedulingConfig tunes slot generation and the slot cache
type SchedulingConfig struct {
	SlotInterval time.Duration
	SlotCacheTTL time.Duration
}

// WorkerConfig tunes the asynq worker that delivers notifications and runs sweeps
type WorkerConfig struct {
	Concurrency     int
	QueueDB         int
	NotifyMaxRetry  int
	NoShowSweepCron string
	ReminderCron    string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	// .env is optional; plain environment variables are enough in containers
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			Timezone: viper.GetString("APP_TIMEZONE"),
			LogLevel: viper.GetString("LOG_LEVEL"),

			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Scheduling: SchedulingConfig{
			SlotInterval: durationOr("SCHEDULING_SLOT_INTERVAL", 30*time.Minute),
			SlotCacheTTL: durationOr("SCHEDULING_SLOT_CACHE_TTL", 5*time.Minute),
		},
		Worker: WorkerConfig{
			Concurrency:     viper.GetInt("WORKER_CONCURRENCY"),
			QueueDB:         viper.GetInt("WORKER_QUEUE_DB"),
			NotifyMaxRetry:  viper.GetInt("WORKER_NOTIFY_MAX_RETRY"),
			NoShowSweepCron: viper.GetString("WORKER_NO_SHOW_SWEEP_CRON"),
			ReminderCron:    viper.GetString("WORKER_REMINDER_CRON"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

// Location resolves the clinic timezone every appointment date and time is interpreted in
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_TIMEZONE", "UTC")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("WORKER_QUEUE_DB", 1)
	viper.SetDefault("WORKER_NOTIFY_MAX_RETRY", 5)
	viper.SetDefault("WORKER_NO_SHOW_SWEEP_CRON", "*/15 * * * *")
	viper.SetDefault("WORKER_REMINDER_CRON", "0 8 * * *")
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
