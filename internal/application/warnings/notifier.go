package warnings

import (
	"context"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/infrastructure/queue"
)

// QueueNotifier publishes duplicate notifications to the Redis queue for the worker.
type QueueNotifier struct {
	Queue *queue.RedisQueue
}

func (n *QueueNotifier) Publish(ctx context.Context, evt domain.DuplicateFundDetected) error {
	_, err := n.Queue.Push(ctx, MessageDuplicateFundDetected, evt)
	return err
}

// SyncNotifier runs the listener in-process, in the caller's goroutine.
type SyncNotifier struct {
	Listener *Listener
}

func (n *SyncNotifier) Publish(ctx context.Context, evt domain.DuplicateFundDetected) error {
	return n.Listener.Handle(ctx, evt)
}
