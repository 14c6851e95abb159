// Package hooks provides reusable transition-level callbacks for command
// definitions: structured logging, tracing, metrics and principal checks.
package hooks

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/plaenen/commandkit/pkg/command"
	"github.com/plaenen/commandkit/pkg/observability"
)

// SymbolUnauthenticated marks runs started without a principal.
const SymbolUnauthenticated = "unauthenticated"

// AttachLogging logs every lifecycle transition of the definition's runs at
// debug level.
func AttachLogging[I, O any](d *command.Definition[I, O], logger *slog.Logger) *command.Definition[I, O] {
	if logger == nil {
		logger = slog.Default()
	}

	d.BeforeAnyTransition(func(ctx context.Context, run *command.Run[I]) error {
		t := run.Transition()
		logger.DebugContext(ctx, "transition starting",
			slog.String("command", run.CommandName()),
			slog.String("run_id", run.Metadata().RunID),
			slog.String("transition", t.Name),
			slog.String("from", string(t.From)),
		)
		return nil
	})
	d.AfterAnyTransition(func(ctx context.Context, run *command.Run[I]) error {
		t := run.Transition()
		logger.DebugContext(ctx, "transition finished",
			slog.String("command", run.CommandName()),
			slog.String("run_id", run.Metadata().RunID),
			slog.String("transition", t.Name),
			slog.String("state", string(run.State())),
			slog.Int("error_count", len(run.Errors())),
		)
		return nil
	})
	return d
}

// AttachTracing wraps every lifecycle transition in a span. Spans nest under
// whatever span the caller's context carries, so a traced dispatch shows the
// full phase breakdown.
func AttachTracing[I, O any](d *command.Definition[I, O], tracer trace.Tracer) *command.Definition[I, O] {
	d.AroundAnyTransition(func(ctx context.Context, run *command.Run[I], next command.Next) error {
		t := run.Transition()

		attrs := observability.RunAttrs(run.CommandName(), run.Metadata().RunID, run.Metadata().CorrelationID)
		attrs = append(attrs, observability.TransitionAttrs(t.Name, string(t.From), string(t.To))...)

		ctx, span := tracer.Start(ctx, "transition."+t.Name, trace.WithAttributes(attrs...))
		err := next(ctx)
		observability.EndSpan(span, err)
		return err
	})
	return d
}

// AttachMetrics counts every lifecycle transition of the definition's runs.
func AttachMetrics[I, O any](d *command.Definition[I, O], tel *observability.Telemetry) *command.Definition[I, O] {
	if tel == nil || tel.Metrics == nil {
		return d
	}
	d.AfterAnyTransition(func(ctx context.Context, run *command.Run[I]) error {
		tel.Metrics.RecordTransition(ctx, run.CommandName(), run.Transition().Name)
		return nil
	})
	return d
}

// RequirePrincipal halts the run with an "unauthenticated" error before a
// transaction opens when no principal is attached to the run.
func RequirePrincipal[I, O any](d *command.Definition[I, O]) *command.Definition[I, O] {
	d.BeforeOpenTransaction(func(ctx context.Context, run *command.Run[I]) error {
		if run.Metadata().PrincipalID == "" {
			return run.AddRuntimeError(SymbolUnauthenticated,
				"command requires an authenticated principal",
				command.WithHalt())
		}
		return nil
	})
	return d
}
