package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string // postgres DSN, or sqlite:<path> / sqlite::memory:
	RedisURL    string

	QueueDriver            string // redis or sync
	QueueName              string
	QueueMaxAttempts       int
	QueuePollInterval      time.Duration
	QueueVisibilityTimeout time.Duration
	QueueRequeueSchedule   string // cron spec for returning stale reservations

	PageSize    int
	MaxPageSize int

	CORSAllowedOrigins []string
	HealthAdminKey     string
}

const (
	QueueDriverRedis = "redis"
	QueueDriverSync  = "sync"
)

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "sqlite:canoe.db")
	v.SetDefault("QUEUE_DRIVER", QueueDriverSync)
	v.SetDefault("QUEUE_NAME", "notifications")
	v.SetDefault("QUEUE_MAX_ATTEMPTS", 3)
	v.SetDefault("QUEUE_POLL_INTERVAL", "1s")
	v.SetDefault("QUEUE_VISIBILITY_TIMEOUT", "90s")
	v.SetDefault("QUEUE_REQUEUE_SCHEDULE", "@every 1m")
	v.SetDefault("PAGE_SIZE", 15)
	v.SetDefault("MAX_PAGE_SIZE", 100)

	driver := strings.ToLower(strings.TrimSpace(v.GetString("QUEUE_DRIVER")))
	if driver != QueueDriverRedis {
		driver = QueueDriverSync
	}

	return &Config{
		Env:                    v.GetString("APP_ENV"),
		Port:                   v.GetString("PORT"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		DatabaseURL:            v.GetString("DATABASE_URL"),
		RedisURL:               v.GetString("REDIS_URL"),
		QueueDriver:            driver,
		QueueName:              v.GetString("QUEUE_NAME"),
		QueueMaxAttempts:       positive(v.GetInt("QUEUE_MAX_ATTEMPTS"), 3),
		QueuePollInterval:      v.GetDuration("QUEUE_POLL_INTERVAL"),
		QueueVisibilityTimeout: v.GetDuration("QUEUE_VISIBILITY_TIMEOUT"),
		QueueRequeueSchedule:   v.GetString("QUEUE_REQUEUE_SCHEDULE"),
		PageSize:               positive(v.GetInt("PAGE_SIZE"), 15),
		MaxPageSize:            positive(v.GetInt("MAX_PAGE_SIZE"), 100),
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		HealthAdminKey:         v.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func positive(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
