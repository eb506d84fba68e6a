// Package probe issues independent API calls concurrently through a worker
// pool and reports how they resolved. It is used to smoke-test a backend
// and to exercise the client under concurrent use.
package probe

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/transcript/internal/client"
	"github.com/okian/transcript/pkg/logger"
	"github.com/okian/transcript/pkg/metrics"
)

// API is the subset of the client a probe drives.
type API interface {
	ListSessions(ctx context.Context) (client.Payload, error)
	CreateSession(ctx context.Context, payload any) (client.Payload, error)
}

type callKind int

const (
	callList callKind = iota
	callCreate
)

// Runner executes probe runs.
type Runner struct {
	api     API
	logger  logger.Logger
	metrics *metrics.Manager
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// New creates a Runner driving api.
func New(api API, opts ...Option) *Runner {
	r := &Runner{api: api, logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run dispatches cfg.Requests calls over cfg.Workers goroutines and waits
// for all of them. Individual call failures are counted, not returned; Run
// fails only on invalid config or when no call succeeded.
func (r *Runner) Run(ctx context.Context, cfg Config) (Stats, error) {
	if cfg.Workers <= 0 || cfg.Requests <= 0 {
		return Stats{}, fmt.Errorf("%w: workers and requests must be positive", ErrInvalidConfig)
	}
	if cfg.Create && cfg.Session == nil {
		return Stats{}, fmt.Errorf("%w: create requires a session payload", ErrInvalidConfig)
	}

	stats := Stats{StartTime: time.Now(), Failures: make(map[string]int)}
	r.logger.Info(ctx, "starting probe",
		logger.Int("workers", cfg.Workers),
		logger.Int("requests", cfg.Requests),
		logger.Bool("create", cfg.Create))

	var (
		submitted int64
		succeeded int64
		failed    int64
		lists     int64
		creates   int64
		failMu    sync.Mutex
	)

	jobs := make(chan callKind, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for kind := range jobs {
				var err error
				switch kind {
				case callCreate:
					atomic.AddInt64(&creates, 1)
					_, err = r.api.CreateSession(ctx, cfg.Session)
				default:
					atomic.AddInt64(&lists, 1)
					_, err = r.api.ListSessions(ctx)
				}
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					r.metrics.RecordProbeCall(metrics.ProbeResultFailure)
					failMu.Lock()
					stats.Failures[err.Error()]++
					failMu.Unlock()
					continue
				}
				atomic.AddInt64(&succeeded, 1)
				r.metrics.RecordProbeCall(metrics.ProbeResultSuccess)
			}
		}()
	}

	// Progress reporting
	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(reportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-progressDone:
				return
			case <-ticker.C:
				r.logger.Info(ctx, "probe progress",
					logger.Int64("submitted", atomic.LoadInt64(&submitted)),
					logger.Int("total", cfg.Requests),
					logger.Int64("succeeded", atomic.LoadInt64(&succeeded)),
					logger.Int64("failed", atomic.LoadInt64(&failed)))
			}
		}
	}()

	// Send jobs to workers
	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Requests; i++ {
			kind := callList
			if cfg.Create && i%2 == 1 {
				kind = callCreate
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- kind:
			}
		}
	}()

	wg.Wait()
	close(progressDone)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Succeeded = int(atomic.LoadInt64(&succeeded))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Lists = int(atomic.LoadInt64(&lists))
	stats.Creates = int(atomic.LoadInt64(&creates))
	r.metrics.ObserveProbeRun(cfg.Workers, stats.Duration)

	r.logger.Info(ctx, "probe completed",
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("callsPerSecond", stats.CallsPerSecond()))

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Succeeded == 0 {
		return stats, ErrAllFailed
	}
	return stats, nil
}
