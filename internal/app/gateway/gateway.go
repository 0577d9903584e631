package gateway

import (
	"context"
	"errors"
	"time"

	"app/pkg/resemble"
	"app/pkg/slg"

	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("synthesis queue is full")

type Config struct {
	QueueSize           int           `yaml:"queue_size"`
	MinDispatchInterval time.Duration `yaml:"min_dispatch_interval"`
}

type Synthesizer interface {
	CreateClip(ctx context.Context, text string) (*resemble.Clip, error)
}

type result struct {
	audioURL string
	err      error
}

type job struct {
	id   uuid.UUID
	text string

	result chan result
}

// Gateway serializes outbound synthesis calls: jobs queue in arrival order
// and a single worker dispatches them with at least MinDispatchInterval
// between dispatch starts, no matter how many requests arrive concurrently.
type Gateway struct {
	synthesizer Synthesizer
	clock       Clock

	minInterval time.Duration

	jobs chan job
}

func New(cfg *Config, clock Clock, synthesizer Synthesizer) *Gateway {
	queueSize := cfg.QueueSize
	if queueSize == 0 {
		queueSize = 64
	}

	minInterval := cfg.MinDispatchInterval
	if minInterval == 0 {
		minInterval = 25 * time.Millisecond
	}

	return &Gateway{
		synthesizer: synthesizer,
		clock:       clock,

		minInterval: minInterval,

		jobs: make(chan job, queueSize),
	}
}

// Submit enqueues a synthesis job and blocks until its result is ready or
// ctx is done. A full queue fails immediately with ErrQueueFull.
func (g *Gateway) Submit(ctx context.Context, text string) (string, error) {
	newJob := job{
		id:   uuid.New(),
		text: text,

		result: make(chan result, 1),
	}

	select {
	case g.jobs <- newJob:
		metrics.QueueDepth.Inc()
	default:
		metrics.Jobs.WithLabelValues("rejected").Inc()
		return "", ErrQueueFull
	}

	select {
	case res := <-newJob.result:
		return res.audioURL, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run processes queued jobs until ctx is done. One call in flight at a time.
func (g *Gateway) Run(ctx context.Context) error {
	logger := slg.GetSlog(ctx)

	var nextDispatch time.Time

	for {
		var curJob job

		select {
		case curJob = <-g.jobs:
			metrics.QueueDepth.Dec()
		case <-ctx.Done():
			return ctx.Err()
		}

		if wait := nextDispatch.Sub(g.clock.Now()); wait > 0 {
			select {
			case <-g.clock.After(wait):
			case <-ctx.Done():
				curJob.result <- result{err: ctx.Err()}
				return ctx.Err()
			}
		}

		dispatchedAt := g.clock.Now()
		nextDispatch = dispatchedAt.Add(g.minInterval)

		clip, err := g.synthesizer.CreateClip(ctx, curJob.text)
		if err != nil {
			logger.Error("synthesis job failed", "job_id", curJob.id, "err", err)
			metrics.Jobs.WithLabelValues("error").Inc()

			curJob.result <- result{err: err}

			continue
		}

		logger.Debug("synthesis job done", "job_id", curJob.id, "clip_id", clip.ID)
		metrics.Jobs.WithLabelValues("ok").Inc()

		curJob.result <- result{audioURL: clip.AudioSrc}
	}
}
