package observability

import (
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics observability.Metrics
}

func (p *provider) Tracer() observability.Tracer   { return p.tracer }
func (p *provider) Logger() observability.Logger   { return p.logger }
func (p *provider) Metrics() observability.Metrics { return p.metrics }

// instruments resolves metric keys against what was registered at start-up.
type instruments struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m *instruments) Counter(name observability.MetricKey) observability.Counter {
	return lookup(m.counters, name, observability.NopCounter())
}

func (m *instruments) Histogram(name observability.MetricKey) observability.Histogram {
	return lookup(m.histograms, name, observability.NopHistogram())
}

func lookup[T comparable](m map[observability.MetricKey]T, key observability.MetricKey, fallback T) T {
	var zero T
	if v, ok := m[key]; ok && v != zero {
		return v
	}
	return fallback
}

// New assembles the telemetry bundle handed to use cases and HTTP handlers.
// Nil parts fall back to their no-op counterparts and unknown metric keys
// resolve to no-op instruments, so callers never nil-check.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	counters map[observability.MetricKey]observability.Counter,
	histograms map[observability.MetricKey]observability.Histogram,
) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	var metrics observability.Metrics = observability.NopMetrics()
	if len(counters) > 0 || len(histograms) > 0 {
		metrics = &instruments{counters: counters, histograms: histograms}
	}
	return &provider{tracer: tracer, logger: logger, metrics: metrics}
}

// Bootstrap wires the production bundle: every standard instrument
// registered on reg, a tracer from the global provider, and logger.
func Bootstrap(service string, logger observability.Logger, reg prometheus.Registerer) observability.Observability {
	counters, histograms := prometrics.Standard(prometrics.New(reg, "", ""))
	return New(oteltrace.New(service), logger, counters, histograms)
}
