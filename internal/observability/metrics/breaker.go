package metrics

import "github.com/prometheus/client_golang/prometheus"

// BreakerStateFunc returns the state name of every circuit breaker keyed by operation.
type BreakerStateFunc func() map[string]string

type breakerCollector struct {
	states BreakerStateFunc
	desc   *prometheus.Desc
}

// NewBreakerCollector exposes circuit breaker states as a gauge that is 1 for the current state.
func NewBreakerCollector(service string, states BreakerStateFunc) prometheus.Collector {
	return &breakerCollector{
		states: states,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "resilience", "breaker_state"),
			"Current circuit breaker state per outbound operation.",
			[]string{"operation", "state"},
			prometheus.Labels{"service": service},
		),
	}
}

func (c *breakerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *breakerCollector) Collect(ch chan<- prometheus.Metric) {
	for operation, state := range c.states() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 1, operation, state)
	}
}
