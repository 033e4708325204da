// Package worker runs background tasks on a bounded goroutine pool.
//
// Code outside this package does not start bare goroutines for background
// work; it submits a Task so panics are recovered and shutdown is bounded.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"promptdeck.io/promptdeck/internal/pkg/logger"
)

const (
	defaultPoolSize        = 64
	defaultShutdownTimeout = 30 * time.Second
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pools runs detached tasks bound to the service lifecycle rather than to
// the request that produced them.
type Pools struct {
	pool            *ants.Pool
	shutdownTimeout time.Duration

	serviceCtx    context.Context
	serviceCancel context.CancelFunc
}

// PoolConfig contains worker pool configuration. Zero values select the
// defaults (64 workers, 30s shutdown).
type PoolConfig struct {
	GeneralPoolSize int
	ShutdownTimeout time.Duration
}

// NewPools creates the pool. Tasks see a context derived from ctx that is
// cancelled by Shutdown.
func NewPools(ctx context.Context, cfg PoolConfig) (*Pools, error) {
	size := cfg.GeneralPoolSize
	if size <= 0 {
		size = defaultPoolSize
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	pool, err := ants.NewPool(size,
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("Worker panic recovered",
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
		}),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, err
	}

	serviceCtx, serviceCancel := context.WithCancel(ctx)
	return &Pools{
		pool:            pool,
		shutdownTimeout: timeout,
		serviceCtx:      serviceCtx,
		serviceCancel:   serviceCancel,
	}, nil
}

// SubmitDetached queues task. A task still queued when shutdown starts is
// skipped.
func (p *Pools) SubmitDetached(task Task) error {
	err := p.pool.Submit(func() {
		if p.serviceCtx.Err() != nil {
			logger.Debug("Detached task skipped: service shutting down")
			return
		}
		task(p.serviceCtx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// Shutdown cancels the service context and waits for running tasks up to
// the configured timeout.
func (p *Pools) Shutdown() {
	p.serviceCancel()

	if err := p.pool.ReleaseTimeout(p.shutdownTimeout); err != nil {
		logger.Warn("Worker pool shutdown timeout", zap.Error(err))
	}
}
