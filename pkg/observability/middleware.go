package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/plaenen/commandkit/pkg/command"
)

// Middleware wraps dispatched runners with a server span and run metrics.
// Fault errors and failed outcomes both mark the span as errored; a failed
// outcome additionally records the error count and the first symbol.
func Middleware(tel *Telemetry) command.RunnerMiddleware {
	tracer := tel.Tracer("commandkit.dispatch")

	return func(next command.Runner) command.Runner {
		return func(ctx context.Context, attrs command.Attributes) (*command.Outcome[any], error) {
			name, _ := command.CommandNameFromContext(ctx)
			if name == "" {
				name = "unknown"
			}

			ctx, span := tracer.Start(ctx, name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(AttrCommandName.String(name)),
			)
			defer span.End()

			start := time.Now()
			outcome, err := next(ctx, attrs)
			duration := time.Since(start)

			errorCount := 0
			if outcome != nil && outcome.IsFailure() {
				errorCount = len(outcome.Errors())
			}
			failed := err != nil || errorCount > 0

			if tel.Metrics != nil {
				tel.Metrics.RecordRun(ctx, name, duration, failed, errorCount)
			}

			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.Bool("success", false))
			case errorCount > 0:
				first := outcome.Errors()[0]
				span.SetStatus(codes.Error, first.Symbol)
				span.SetAttributes(
					attribute.Bool("success", false),
					AttrErrorCount.Int(errorCount),
					AttrErrorSymbol.String(first.Symbol),
				)
			default:
				span.SetStatus(codes.Ok, "")
				span.SetAttributes(attribute.Bool("success", true))
			}

			span.SetAttributes(attribute.Float64("duration_ms", float64(duration.Milliseconds())))

			return outcome, err
		}
	}
}
