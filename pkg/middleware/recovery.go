package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/plaenen/commandkit/pkg/command"
)

// Recovery converts panics escaping a runner into faults. The lifecycle
// already converts panics inside execute; this is the safety net for hook and
// middleware bugs at the dispatch boundary.
func Recovery(logger *slog.Logger) command.RunnerMiddleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next command.Runner) command.Runner {
		return func(ctx context.Context, attrs command.Attributes) (outcome *command.Outcome[any], err error) {
			defer func() {
				if r := recover(); r != nil {
					name, _ := command.CommandNameFromContext(ctx)

					logger.ErrorContext(ctx, "command dispatch panicked",
						slog.String("command", name),
						slog.Any("panic", r),
						slog.String("stack_trace", string(debug.Stack())),
					)

					outcome = nil
					err = fmt.Errorf("command dispatch panicked: %v", r)
				}
			}()

			return next(ctx, attrs)
		}
	}
}
