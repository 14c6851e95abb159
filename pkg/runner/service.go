package runner

import "context"

// Service is anything with a managed lifecycle: a command server, a store, a
// broker. The Runner owns the order; the service owns being ready when Start
// returns.
type Service interface {
	// Name identifies the service in logs and errors.
	Name() string

	// Start brings the service up and returns once it is ready to serve.
	// It must respect context cancellation.
	Start(ctx context.Context) error

	// Stop shuts the service down within the context deadline.
	Stop(ctx context.Context) error
}

// HealthChecker is implemented by services that can report liveness.
type HealthChecker interface {
	Service

	// HealthCheck returns an error when the service is unhealthy.
	HealthCheck(ctx context.Context) error
}
