package observability

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCounter struct{ n float64 }

func (c *countingCounter) Add(d float64, _ ...observability.Label) { c.n += d }
func (c *countingCounter) Bind(...observability.Label) observability.BoundCounter {
	return nil
}

func TestNew_FallsBackToNop(t *testing.T) {
	tel := New(nil, nil, nil, nil)

	assert.NotNil(t, tel.Tracer())
	assert.NotNil(t, tel.Logger())
	assert.NotPanics(t, func() {
		tel.Metrics().Counter(observability.MUsecaseRequests).Add(1)
		tel.Metrics().Histogram(observability.MUsecaseDuration).Observe(0.1)
	})
}

func TestNew_ResolvesRegisteredCounters(t *testing.T) {
	c := &countingCounter{}
	tel := New(nil, nil, map[observability.MetricKey]observability.Counter{
		observability.MReconciliations: c,
		observability.MHTTPRequests:    nil,
	}, nil)

	tel.Metrics().Counter(observability.MReconciliations).Add(2)
	tel.Metrics().Counter(observability.MHTTPRequests).Add(5)

	assert.Equal(t, 2.0, c.n)
}

func TestBootstrap_RegistersStandardInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	tel := Bootstrap("checkout-test", nil, reg)

	tel.Metrics().Counter(observability.MReconciliations).Add(1,
		observability.L("outcome", "success"), observability.L("reason", "verified"))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, string(observability.MReconciliations))
}
