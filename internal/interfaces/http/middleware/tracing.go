package middleware

import (
	"net/http"

	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig switches the otelgin server spans on and names the service
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing opens a server span per request. Disabled tracing is a no-op.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes copies request_id, club_id and the caller uid onto the
// current span. It runs after RequestID and the JWT middleware.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if clubID := c.Param("clubId"); clubID != "" {
				span.SetAttributes(attribute.String("club_id", clubID))
			}
			if caller := GetCaller(c); caller != nil {
				span.SetAttributes(attribute.String("user_id", caller.UID))
			}
		}
		c.Next()
	}
}

// SpanOutcome records the response status and the domain error code of a
// rejected request on the server span, and fails the span on a 5xx.
func SpanOutcome() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if last := c.Errors.Last(); last != nil {
			span.SetAttributes(attribute.String(telemetry.AttrErrorCode, shared.CodeOf(last.Err)))
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
