package observability

// MetricKey names a registered instrument. Unknown keys resolve to no-op
// instruments.
type MetricKey string

const (
	// RED metrics for use cases: {use_case,outcome} and {use_case}.
	MUsecaseRequests MetricKey = "usecase_requests_total"
	MUsecaseDuration MetricKey = "usecase_duration_seconds"

	// HTTP server metrics labelled {method,route,status}.
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"

	// Calls to Paystack, Kafka and the event bus: {peer,endpoint,outcome} and {peer,endpoint}.
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"

	// MReconciliations counts payment callbacks by terminal outcome (success, failed, error).
	MReconciliations MetricKey = "payment_reconciliations_total"
	// MUnitsDecremented counts stock units removed by order placement, per origin.
	MUnitsDecremented MetricKey = "inventory_units_decremented_total"
)

type Metrics interface {
	Counter(name MetricKey) Counter
	Histogram(name MetricKey) Histogram
}

type Counter interface {
	Add(delta float64, labels ...Label)
	// Bind fixes labels for hot paths that always report the same series.
	Bind(labels ...Label) BoundCounter
}

type BoundCounter interface {
	Add(delta float64)
}

type Histogram interface {
	Observe(value float64, labels ...Label)
	Bind(labels ...Label) BoundHistogram
}

type BoundHistogram interface {
	Observe(value float64)
}

// Label is a low-cardinality metric dimension. Never put ids or references here.
type Label struct{ Key, Value string }

func L(k, v string) Label { return Label{Key: k, Value: v} }
