package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "minishop.http"

// ObservabilityMiddleware combines:
// - W3C trace context extraction and a server span
// - request-scoped logger injection (dynamic fields only)
// - X-Request-ID generation + echo
// - HTTP metrics labelled by the chi route pattern
// - one access log line per request
func ObservabilityMiddleware(
	base observability.Logger,
	requestID func(*http.Request) string,
	tel observability.Observability,
) func(http.Handler) http.Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if base == nil {
		base = tel.Logger()
	}
	prop := otel.GetTextMapPropagator()
	reqCounter := tel.Metrics().Counter(observability.MHTTPRequests)
	durHistogram := tel.Metrics().Histogram(observability.MHTTPRequestDuration)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
					attribute.String("http.user_agent", r.UserAgent()),
				),
			)
			defer span.End()

			rid := ""
			if requestID != nil {
				rid = requestID(r)
			}
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)

			fields := []observability.Field{observability.F("request_id", rid)}
			if sc := span.SpanContext(); sc.IsValid() {
				fields = append(fields,
					observability.F("trace_id", sc.TraceID().String()),
					observability.F("span_id", sc.SpanID().String()),
				)
			}
			ctx, reqLogger := logctx.Enrich(ctx, base, fields...)

			lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lrw, r.WithContext(ctx))

			// chi fills the pattern while routing, so it is only known now.
			route := routePattern(r)
			status := strconv.Itoa(lrw.status)
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", lrw.status),
			)
			if lrw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(lrw.status))
			}

			labels := []observability.Label{
				observability.L("method", r.Method),
				observability.L("route", route),
				observability.L("status", status),
			}
			reqCounter.Add(1, labels...)
			durHistogram.Observe(time.Since(start).Seconds(), labels...)

			reqLogger.Info("http_access",
				observability.F("method", r.Method),
				observability.F("route", route),
				observability.F("path", r.URL.Path),
				observability.F("status", lrw.status),
				observability.F("latency_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
