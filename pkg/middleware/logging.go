// Package middleware provides dispatch-level wrappers for registry runners:
// logging, panic recovery and authorization at the transport boundary.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/plaenen/commandkit/pkg/command"
)

// Logging logs every dispatched run with timing and outcome using slog.
func Logging(logger *slog.Logger) command.RunnerMiddleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next command.Runner) command.Runner {
		return func(ctx context.Context, attrs command.Attributes) (*command.Outcome[any], error) {
			start := time.Now()

			name, _ := command.CommandNameFromContext(ctx)
			correlationID, _ := command.CorrelationIDFromContext(ctx)
			principalID, _ := command.PrincipalIDFromContext(ctx)

			logger.InfoContext(ctx, "running command",
				slog.String("command", name),
				slog.String("correlation_id", correlationID),
				slog.String("principal_id", principalID),
			)

			outcome, err := next(ctx, attrs)

			duration := time.Since(start)

			switch {
			case err != nil:
				logger.ErrorContext(ctx, "command run faulted",
					slog.String("command", name),
					slog.Int64("duration_ms", duration.Milliseconds()),
					slog.String("error", err.Error()),
				)
			case outcome.IsFailure():
				errs := outcome.Errors()
				logger.WarnContext(ctx, "command run failed",
					slog.String("command", name),
					slog.Int64("duration_ms", duration.Milliseconds()),
					slog.Int("error_count", len(errs)),
					slog.String("first_error", errs[0].Key()),
				)
			default:
				logger.InfoContext(ctx, "command run succeeded",
					slog.String("command", name),
					slog.Int64("duration_ms", duration.Milliseconds()),
				)
			}

			return outcome, err
		}
	}
}
