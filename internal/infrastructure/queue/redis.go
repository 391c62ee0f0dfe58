package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue stores pending messages in a list, reserved messages in a
// processing list and reservation times in a hash keyed by the stored value.
type RedisQueue struct {
	Rdb        *redis.Client
	Name       string
	Visibility time.Duration
}

// Reservation is a message taken off the pending list. Raw is the exact
// stored value, needed to remove it from the processing list.
type Reservation struct {
	Message Message
	Raw     string
}

func (q *RedisQueue) pendingKey() string    { return "queues:" + q.Name }
func (q *RedisQueue) processingKey() string { return "queues:" + q.Name + ":processing" }
func (q *RedisQueue) reservedKey() string   { return "queues:" + q.Name + ":reserved" }

// reserveScript moves the oldest pending entry to the processing list and
// stamps its reservation time in one step, so RequeueStale never sees an
// unstamped entry that a worker is still holding.
var reserveScript = redis.NewScript(`
local raw = redis.call('RPOPLPUSH', KEYS[1], KEYS[2])
if not raw then
  return false
end
redis.call('HSET', KEYS[3], raw, ARGV[1])
return raw
`)

// Push enqueues a new message with payload v.
func (q *RedisQueue) Push(ctx context.Context, typ string, v interface{}) (Message, error) {
	msg, err := NewMessage(typ, v)
	if err != nil {
		return Message{}, err
	}
	raw, err := encode(msg)
	if err != nil {
		return Message{}, err
	}
	if err := q.Rdb.LPush(ctx, q.pendingKey(), raw).Err(); err != nil {
		return Message{}, fmt.Errorf("push %s: %w", typ, err)
	}
	return msg, nil
}

// Reserve moves the oldest pending message to the processing list. It
// returns nil when the queue is empty.
func (q *RedisQueue) Reserve(ctx context.Context) (*Reservation, error) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	keys := []string{q.pendingKey(), q.processingKey(), q.reservedKey()}
	raw, err := reserveScript.Run(ctx, q.Rdb, keys, now).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reserve: %w", err)
	}
	msg, err := decode([]byte(raw))
	if err != nil {
		// unreadable entries would block the processing list forever
		q.forget(ctx, raw)
		return nil, err
	}
	return &Reservation{Message: msg, Raw: raw}, nil
}

func (q *RedisQueue) forget(ctx context.Context, raw string) {
	_, _ = q.Rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, q.processingKey(), 1, raw)
		p.HDel(ctx, q.reservedKey(), raw)
		return nil
	})
}

// Ack removes a handled message.
func (q *RedisQueue) Ack(ctx context.Context, r *Reservation) error {
	_, err := q.Rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, q.processingKey(), 1, r.Raw)
		p.HDel(ctx, q.reservedKey(), r.Raw)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ack %s: %w", r.Message.ID, err)
	}
	return nil
}

// Release puts a reserved message back on the pending list with one more attempt counted.
func (q *RedisQueue) Release(ctx context.Context, r *Reservation) error {
	msg := r.Message
	msg.Attempts++
	raw, err := encode(msg)
	if err != nil {
		return err
	}
	_, err = q.Rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, q.processingKey(), 1, r.Raw)
		p.HDel(ctx, q.reservedKey(), r.Raw)
		p.LPush(ctx, q.pendingKey(), raw)
		return nil
	})
	if err != nil {
		return fmt.Errorf("release %s: %w", msg.ID, err)
	}
	return nil
}

// RequeueStale releases every processing message reserved longer than
// Visibility ago. Entries without a reservation time can only be left over
// from an older queue layout and are released as well.
func (q *RedisQueue) RequeueStale(ctx context.Context) (int, error) {
	raws, err := q.Rdb.LRange(ctx, q.processingKey(), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("list processing: %w", err)
	}
	cutoff := time.Now().Add(-q.Visibility).UnixMilli()
	requeued := 0
	for _, raw := range raws {
		at, err := q.Rdb.HGet(ctx, q.reservedKey(), raw).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return requeued, fmt.Errorf("reservation time: %w", err)
		}
		if err == nil && at > cutoff {
			continue
		}
		msg, err := decode([]byte(raw))
		if err != nil {
			q.forget(ctx, raw)
			continue
		}
		if err := q.Release(ctx, &Reservation{Message: msg, Raw: raw}); err != nil {
			return requeued, err
		}
		requeued++
	}
	return requeued, nil
}

// Depth is the number of pending messages.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.Rdb.LLen(ctx, q.pendingKey()).Result()
}

// InFlight is the number of reserved messages.
func (q *RedisQueue) InFlight(ctx context.Context) (int64, error) {
	return q.Rdb.LLen(ctx, q.processingKey()).Result()
}
