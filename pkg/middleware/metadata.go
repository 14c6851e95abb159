package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/plaenen/commandkit/pkg/command"
)

// EnsureCorrelationID stamps a fresh correlation ID into the context when the
// caller supplied none, so a dispatch and all its subcommand runs share one.
func EnsureCorrelationID() command.RunnerMiddleware {
	return func(next command.Runner) command.Runner {
		return func(ctx context.Context, attrs command.Attributes) (*command.Outcome[any], error) {
			if _, ok := command.CorrelationIDFromContext(ctx); !ok {
				ctx = command.WithCorrelationID(ctx, uuid.NewString())
			}
			return next(ctx, attrs)
		}
	}
}
