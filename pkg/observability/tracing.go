package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EndSpan ends a span, recording err when non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID extracts the trace ID from context as a string.
func TraceID(ctx context.Context) string {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// SpanID extracts the span ID from context as a string.
func SpanID(ctx context.Context) string {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if spanCtx.IsValid() {
		return spanCtx.SpanID().String()
	}
	return ""
}

// SetSpanAttributes adds attributes to the current span in the context.
func SetSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// SetSpanError records an error on the current span in the context.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddSpanEvent adds an event to the current span in the context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// Common attribute keys for command runs.
var (
	AttrCommandName   = attribute.Key("command.name")
	AttrRunID         = attribute.Key("run.id")
	AttrCorrelationID = attribute.Key("run.correlation_id")
	AttrPrincipalID   = attribute.Key("run.principal_id")

	AttrTransition = attribute.Key("transition.name")
	AttrFromState  = attribute.Key("state.from")
	AttrToState    = attribute.Key("state.to")

	AttrErrorCount  = attribute.Key("error.count")
	AttrErrorSymbol = attribute.Key("error.symbol")
)

// RunAttrs returns the common attributes identifying one run.
func RunAttrs(commandName, runID, correlationID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		AttrCommandName.String(commandName),
		AttrRunID.String(runID),
	}
	if correlationID != "" {
		attrs = append(attrs, AttrCorrelationID.String(correlationID))
	}
	return attrs
}

// TransitionAttrs returns the attributes describing one lifecycle transition.
func TransitionAttrs(name, from, to string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrTransition.String(name),
		AttrFromState.String(from),
		AttrToState.String(to),
	}
}

// ErrorAttrs returns common error attributes.
func ErrorAttrs(err error, symbol string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("error.type", fmt.Sprintf("%T", err)),
	}
	if symbol != "" {
		attrs = append(attrs, AttrErrorSymbol.String(symbol))
	}
	return attrs
}
