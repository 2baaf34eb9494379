// Package config loads application settings from the environment and an
// optional .env file through Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups every setting the service reads at startup.
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Reports  ReportsConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Env      string // development, production
	Port     string // fiber listen address, e.g. ":8080"
	LogLevel string
}

// DBConfig selects the GORM dialect. Driver is "postgres" or "sqlite".
type DBConfig struct {
	Driver string
	DSN    string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// RabbitMQConfig: an empty URL disables event publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// RedisConfig: an empty Addr disables report caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ReportsConfig holds the placeholders shown for orders whose customer no longer exists.
type ReportsConfig struct {
	UnknownName  string
	UnknownEmail string
}

// AdminConfig seeds the first administrator when both fields are set.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// Load reads configuration. Environment variables take precedence over .env.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // the file is optional

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already prepared Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: time.Duration(v.GetInt("JWT_EXPIRATION_HOURS")) * time.Hour,
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Queue:    v.GetString("RABBITMQ_QUEUE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REPORT_CACHE_TTL"),
		},
		Reports: ReportsConfig{
			UnknownName:  v.GetString("REPORT_UNKNOWN_NAME"),
			UnknownEmail: v.GetString("REPORT_UNKNOWN_EMAIL"),
		},
		Admin: AdminConfig{
			Name:     v.GetString("ADMIN_NAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if cfg.JWT.Expiration <= 0 {
		return nil, fmt.Errorf("config: JWT_EXPIRATION_HOURS must be positive")
	}
	switch cfg.DB.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=lavanderia port=5432 sslmode=disable")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "lavanderia.orders")
	v.SetDefault("RABBITMQ_QUEUE", "order_notifications")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REPORT_CACHE_TTL", "1m")
	v.SetDefault("REPORT_UNKNOWN_NAME", "unknown")
	v.SetDefault("REPORT_UNKNOWN_EMAIL", "unknown")
	v.SetDefault("ADMIN_NAME", "Administrator")
}

// Defaults returns a Viper instance preloaded with the default values, for tests
// and tools that want to override a few keys.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}
