package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"canoe-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Handler processes one message. A returned error schedules a retry.
type Handler func(ctx context.Context, msg Message) error

// DeadLetter stores messages that exhausted their attempts.
type DeadLetter interface {
	Bury(ctx context.Context, queue string, msg Message, cause error) error
}

// Worker polls a RedisQueue and dispatches messages by type.
type Worker struct {
	Queue        *RedisQueue
	Handlers     map[string]Handler
	MaxAttempts  int
	PollInterval time.Duration
	DeadLetter   DeadLetter
	Log          zerolog.Logger
}

// Run processes messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	interval := w.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	w.Log.Info().Str("queue", w.Queue.Name).Msg("Worker started")
	for {
		if ctx.Err() != nil {
			w.Log.Info().Str("queue", w.Queue.Name).Msg("Worker stopped")
			return nil
		}
		handled, err := w.ProcessNext(ctx)
		if err != nil {
			w.Log.Error().Err(err).Str("queue", w.Queue.Name).Msg("Worker iteration failed")
		}
		if handled && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(interval):
		}
	}
}

// ProcessNext handles at most one message and reports whether one was taken.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	r, err := w.Queue.Reserve(ctx)
	if err != nil || r == nil {
		return false, err
	}
	msg := r.Message
	logger := w.Log.With().Str("message_id", msg.ID).Str("type", msg.Type).Int("attempts", msg.Attempts).Logger()

	handler, ok := w.Handlers[msg.Type]
	if !ok {
		cause := fmt.Errorf("no handler for message type %q", msg.Type)
		logger.Error().Err(cause).Msg("Dropping message")
		return true, w.bury(ctx, r, cause)
	}

	herr := handler(ctx, msg)
	if herr == nil {
		logger.Debug().Msg("Message handled")
		return true, w.Queue.Ack(ctx, r)
	}
	if msg.Attempts+1 >= w.maxAttempts() {
		logger.Error().Err(herr).Msg("Message failed permanently")
		return true, w.bury(ctx, r, herr)
	}
	logger.Warn().Err(herr).Msg("Message failed, retrying")
	return true, w.Queue.Release(ctx, r)
}

func (w *Worker) maxAttempts() int {
	if w.MaxAttempts <= 0 {
		return 1
	}
	return w.MaxAttempts
}

func (w *Worker) bury(ctx context.Context, r *Reservation, cause error) error {
	if w.DeadLetter != nil {
		msg := r.Message
		msg.Attempts++
		if err := w.DeadLetter.Bury(ctx, w.Queue.Name, msg, cause); err != nil {
			// leave it reserved; RequeueStale hands it back later
			return fmt.Errorf("bury %s: %w", msg.ID, err)
		}
	}
	return w.Queue.Ack(ctx, r)
}

// GormDeadLetter writes exhausted messages to failed_notifications.
type GormDeadLetter struct {
	DB *gorm.DB
}

func (d *GormDeadLetter) Bury(ctx context.Context, queue string, msg Message, cause error) error {
	var payload interface{}
	if err := msgpack.Unmarshal(msg.Payload, &payload); err != nil {
		payload = map[string]interface{}{"raw": msg.Payload}
	}
	b, err := json.Marshal(map[string]interface{}{"type": msg.Type, "data": payload})
	if err != nil {
		return err
	}
	return d.DB.WithContext(ctx).Create(&domain.FailedNotification{
		Queue:     queue,
		MessageID: msg.ID,
		Payload:   datatypes.JSON(b),
		Attempts:  msg.Attempts,
		Error:     cause.Error(),
		FailedAt:  time.Now().UTC(),
	}).Error
}
