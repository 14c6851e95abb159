// Package runner manages the lifecycle of long-running services: ordered
// startup, signal handling and reverse-order graceful shutdown.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Runner starts services in registration order and stops them in reverse, so
// a service never outlives what it depends on.
type Runner struct {
	services        []Service
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupTimeout  time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the slog logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithShutdownTimeout bounds the whole shutdown sequence. Default 30s.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.shutdownTimeout = timeout
	}
}

// WithStartupTimeout bounds each service's Start call. Default 1m.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.startupTimeout = timeout
	}
}

// New creates a Runner over the given services.
func New(services []Service, opts ...Option) *Runner {
	r := &Runner{
		services:        services,
		logger:          slog.Default(),
		shutdownTimeout: 30 * time.Second,
		startupTimeout:  1 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts every service, blocks until the context is cancelled or an
// interrupt/termination signal arrives, then stops the started services in
// reverse order. When a service fails to start, the ones already running are
// stopped and the start error is returned.
func (r *Runner) Run(ctx context.Context) error {
	ctx, stop := NotifyShutdown(ctx)
	defer stop()

	started, err := r.startAll(ctx)
	if err != nil {
		if stopErr := r.stopAll(started); stopErr != nil {
			r.logger.Error("cleanup after failed start", "error", stopErr)
		}
		return err
	}
	r.logger.Info("all services started", "count", len(started))

	<-ctx.Done()
	r.logger.Info("shutting down services", "timeout", r.shutdownTimeout)
	return r.stopAll(started)
}

func (r *Runner) startAll(ctx context.Context) ([]Service, error) {
	started := make([]Service, 0, len(r.services))
	for _, svc := range r.services {
		startCtx, cancel := context.WithTimeout(ctx, r.startupTimeout)
		err := svc.Start(startCtx)
		cancel()
		if err != nil {
			r.logger.Error("service failed to start", "service", svc.Name(), "error", err)
			return started, fmt.Errorf("runner: start %s: %w", svc.Name(), err)
		}
		r.logger.Info("service started", "service", svc.Name())
		started = append(started, svc)
	}
	return started, nil
}

// stopAll stops services in reverse start order, all under one shutdown
// deadline. A failing stop is logged and does not keep the rest from
// stopping.
func (r *Runner) stopAll(started []Service) error {
	if len(started) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		svc := started[i]
		if err := svc.Stop(ctx); err != nil {
			r.logger.Error("service failed to stop", "service", svc.Name(), "error", err)
			errs = append(errs, fmt.Errorf("runner: stop %s: %w", svc.Name(), err))
			continue
		}
		r.logger.Info("service stopped", "service", svc.Name())
	}
	return errors.Join(errs...)
}

// HealthCheck checks every service that implements HealthChecker and returns
// the first problem found.
func (r *Runner) HealthCheck(ctx context.Context) error {
	for _, svc := range r.services {
		hc, ok := svc.(HealthChecker)
		if !ok {
			continue
		}
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("runner: service %s unhealthy: %w", svc.Name(), err)
		}
	}
	return nil
}
