package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"canoe-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// ErrorHandler returns the global Fiber error handler. Unhandled errors are
// logged, kept in the Redis error log when rdb is set, and rendered as
// {message}; fiber.Error keeps its own code and message.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("trace_id", GetTraceID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("Unhandled error")
			recordError(rdb, c, err)
		}
		return response.Error(c, message, code)
	}
}

func recordError(rdb *redis.Client, c *fiber.Ctx, err error) {
	if rdb == nil {
		return
	}
	entry, _ := json.Marshal(map[string]interface{}{
		"time":     time.Now().UTC(),
		"trace_id": GetTraceID(c),
		"method":   c.Method(),
		"path":     c.OriginalURL(),
		"message":  err.Error(),
	})
	ctx := context.Background()
	_, _ = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, KeyErrorLog, entry)
		p.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
		return nil
	})
}
