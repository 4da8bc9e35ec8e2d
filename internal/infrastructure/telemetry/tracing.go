package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubhub/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used by the finance services
const TracerName = "clubhub-finance"

// ErrMeterNil is returned when a metrics constructor receives no meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// AttrErrorCode carries the domain error code of a failed operation
const AttrErrorCode = "error.code"

// StartServiceSpan opens an internal span named "<service>.<method>", e.g.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "balance", "get", "club_id", clubID)
//	defer span.End()
//
// Trailing arguments are read as alternating key and value.
func StartServiceSpan(ctx context.Context, service, method string, keyValues ...any) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(pairs(keyValues)...),
	)
}

// SetAttributes adds alternating key and value arguments to span.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span != nil {
		span.SetAttributes(pairs(keyValues)...)
	}
}

// RecordError tags span with the domain code of err. Only internal errors
// flip the span status; a rejected request is a normal outcome.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	code := shared.CodeOf(err)
	span.SetAttributes(attribute.String(AttrErrorCode, code))
	if code != shared.CodeInternal {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func pairs(keyValues []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 1; i < len(keyValues); i += 2 {
		if key, ok := keyValues[i-1].(string); ok {
			out = append(out, attr(key, keyValues[i]))
		}
	}
	return out
}

func attr(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case fmt.Stringer:
		// decimal.Decimal and time.Duration land here
		return attribute.String(key, v.String())
	}
	return attribute.String(key, fmt.Sprint(value))
}
