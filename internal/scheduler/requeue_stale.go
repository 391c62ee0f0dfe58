package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StaleRequeuer returns reservations whose worker never acked them.
type StaleRequeuer interface {
	RequeueStale(ctx context.Context) (int, error)
}

// RequeueStaleJob puts notifications left behind by a crashed worker back on the queue.
type RequeueStaleJob struct {
	queue   StaleRequeuer
	timeout time.Duration
	log     zerolog.Logger
}

// NewRequeueStaleJob creates the job.
func NewRequeueStaleJob(queue StaleRequeuer, log zerolog.Logger) *RequeueStaleJob {
	return &RequeueStaleJob{
		queue:   queue,
		timeout: 30 * time.Second,
		log:     log.With().Str("job", "requeue_stale").Logger(),
	}
}

// Name returns the job name
func (j *RequeueStaleJob) Name() string {
	return "requeue_stale"
}

// Run requeues stale reservations.
func (j *RequeueStaleJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.queue.RequeueStale(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.Warn().Int("requeued", n).Msg("Returned stale notifications to the queue")
	}
	return nil
}
