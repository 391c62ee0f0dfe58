// Package bootstrap wires config, storage, the notification queue and the
// HTTP app into one container shared by the CLI commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	fundsvc "canoe-backend/internal/application/funds"
	healthsvc "canoe-backend/internal/application/health"
	"canoe-backend/internal/application/warnings"
	"canoe-backend/internal/config"
	"canoe-backend/internal/infrastructure/database"
	"canoe-backend/internal/infrastructure/queue"
	"canoe-backend/internal/interfaces/router"
	"canoe-backend/internal/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Container holds the wired application.
type Container struct {
	Config   *config.Config
	DB       *gorm.DB
	Rdb      *redis.Client
	Queue    *queue.RedisQueue // nil with the sync driver
	Listener *warnings.Listener
	Notifier fundsvc.Notifier
	App      *fiber.App
}

// SetupLogger configures the global zerolog logger from LOG_LEVEL. Outside
// production it writes human-readable console output.
func SetupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// Open connects the database and Redis without building the HTTP app.
func Open(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	rdb, err := database.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Container{Config: cfg, DB: db, Rdb: rdb}, nil
}

// New opens storage, picks the notification driver and builds the app.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c.Listener = &warnings.Listener{DB: c.DB}
	switch cfg.QueueDriver {
	case config.QueueDriverRedis:
		if c.Rdb == nil {
			c.Close()
			return nil, errors.New("QUEUE_DRIVER=redis requires REDIS_URL")
		}
		c.Queue = &queue.RedisQueue{Rdb: c.Rdb, Name: cfg.QueueName, Visibility: cfg.QueueVisibilityTimeout}
		c.Notifier = &warnings.QueueNotifier{Queue: c.Queue}
	default:
		c.Notifier = &warnings.SyncNotifier{Listener: c.Listener}
	}

	deps := router.Deps{Config: cfg, DB: c.DB, Rdb: c.Rdb, Notifier: c.Notifier}
	if c.Queue != nil {
		deps.Queue = c.Queue
	}
	c.App = router.CreateApp(deps)

	log.Info().
		Str("queue_driver", cfg.QueueDriver).
		Bool("redis", c.Rdb != nil).
		Msg("Application wired")
	return c, nil
}

// Worker returns the queue worker, or nil with the sync driver.
func (c *Container) Worker() *queue.Worker {
	if c.Queue == nil {
		return nil
	}
	return &queue.Worker{
		Queue:        c.Queue,
		Handlers:     c.Listener.Handlers(),
		MaxAttempts:  c.Config.QueueMaxAttempts,
		PollInterval: c.Config.QueuePollInterval,
		DeadLetter:   &queue.GormDeadLetter{DB: c.DB},
		Log:          log.With().Str("component", "worker").Logger(),
	}
}

// Scheduler returns a scheduler with the queue maintenance jobs registered,
// or nil with the sync driver.
func (c *Container) Scheduler() (*scheduler.Scheduler, error) {
	if c.Queue == nil {
		return nil, nil
	}
	s := scheduler.New(log.Logger)
	if err := s.AddJob(c.Config.QueueRequeueSchedule, scheduler.NewRequeueStaleJob(c.Queue, log.Logger)); err != nil {
		return nil, fmt.Errorf("schedule requeue: %w", err)
	}
	return s, nil
}

// Close releases the database and Redis connections.
func (c *Container) Close() {
	if c.Rdb != nil {
		_ = c.Rdb.Close()
	}
	closeDB(c.DB)
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Health is a convenience for the CLI to check dependencies.
func (c *Container) Health(ctx context.Context) healthsvc.CollectResult {
	src := healthsvc.Sources{Redis: c.Rdb, DB: healthsvc.PingFunc(func() error { return database.Ping(c.DB) })}
	if c.Queue != nil {
		src.Queue = c.Queue
	}
	return healthsvc.CollectHealth(ctx, src)
}
