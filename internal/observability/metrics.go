package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	MessagesTotal     *prometheus.CounterVec
	UntrustedDrops    prometheus.Counter
	AuthzDecisions    *prometheus.CounterVec
	OracleErrors      *prometheus.CounterVec
	RegistryUsers     prometheus.Gauge
	GenerationLatency prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		MessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Handled inbound messages by classified intent.",
		}, []string{"intent"}),
		UntrustedDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "untrusted_drops_total",
			Help:      "Messages dropped because the sender is not trusted.",
		}),
		AuthzDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_decisions_total",
			Help:      "Authorization decisions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		OracleErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_errors_total",
			Help:      "Oracle call failures by oracle and error kind.",
		}, []string{"oracle", "kind"}),
		RegistryUsers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_users",
			Help:      "Number of user records in the registry.",
		}),
		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Reply generation latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000},
		}),
	}
}

func (m *Metrics) ObserveGenerationLatency(d time.Duration) {
	m.GenerationLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
