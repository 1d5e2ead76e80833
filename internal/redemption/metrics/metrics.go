package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the redemption lifecycle.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Open        prometheus.Gauge
	Burned      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_redemptions_total",
			Help: "Redemption lifecycle transitions by resulting status",
		}, []string{"status"}),
		Open: f.NewGauge(prometheus.GaugeOpts{
			Name: "aurum_redemptions_open",
			Help: "Redemption requests pending or processing",
		}),
		Burned: f.NewCounter(prometheus.CounterOpts{
			Name: "aurum_redemptions_burned_units_total",
			Help: "Base units burned by fulfilled redemptions",
		}),
	}
}

func (m *Metrics) Requested() {
	m.Transitions.WithLabelValues("pending").Inc()
	m.Open.Inc()
}

func (m *Metrics) Processing() { m.Transitions.WithLabelValues("processing").Inc() }

func (m *Metrics) Fulfilled(amount uint64) {
	m.Transitions.WithLabelValues("fulfilled").Inc()
	m.Open.Dec()
	m.Burned.Add(float64(amount))
}

func (m *Metrics) Cancelled() {
	m.Transitions.WithLabelValues("cancelled").Inc()
	m.Open.Dec()
}
