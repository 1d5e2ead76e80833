package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox relay.
type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	PurgedTotal     prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
	PollDuration    prometheus.Histogram
	CircuitOpen     prometheus.Gauge
}

// New creates the relay metrics and registers them with the default registry.
func New() *Metrics {
	return &Metrics{
		PendingDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "aurum_outbox_pending_total",
			Help: "Current number of unpublished outbox entries",
		}),
		PublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aurum_outbox_published_total",
			Help: "Total number of outbox entries published to the event stream",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aurum_outbox_publish_failures_total",
			Help: "Total number of outbox publish failures",
		}),
		PurgedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aurum_outbox_purged_total",
			Help: "Total number of processed entries removed by retention",
		}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aurum_outbox_publish_duration_seconds",
			Help:    "Time taken to publish one batch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aurum_outbox_batch_size",
			Help:    "Number of entries fetched per poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		PollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aurum_outbox_poll_duration_seconds",
			Help:    "Time taken for each poll cycle",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CircuitOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "aurum_outbox_circuit_open",
			Help: "1 while the relay's producer circuit is open",
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64) { m.PendingDepth.Set(float64(count)) }

func (m *Metrics) AddPublished(n int) { m.PublishedTotal.Add(float64(n)) }

func (m *Metrics) AddPublishFailures(n int) { m.PublishFailures.Add(float64(n)) }

func (m *Metrics) AddPurged(n int64) { m.PurgedTotal.Add(float64(n)) }

func (m *Metrics) ObservePublishDuration(seconds float64) { m.PublishDuration.Observe(seconds) }

func (m *Metrics) ObserveBatchSize(size int) { m.BatchSize.Observe(float64(size)) }

func (m *Metrics) ObservePollDuration(seconds float64) { m.PollDuration.Observe(seconds) }

func (m *Metrics) SetCircuitOpen(open bool) {
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
