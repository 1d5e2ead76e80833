package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for blacklist enforcement.
type Metrics struct {
	Decisions     *prometheus.CounterVec
	BlacklistSize prometheus.Gauge
	TokensWiped   prometheus.Counter
}

// New creates compliance metrics registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_gatekeeper_decisions_total",
			Help: "Transfer hook verdicts: allowed, denied, rejected",
		}, []string{"decision"}),
		BlacklistSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "aurum_blacklist_entries",
			Help: "Addresses currently blacklisted",
		}),
		TokensWiped: f.NewCounter(prometheus.CounterOpts{
			Name: "aurum_blacklist_tokens_wiped_total",
			Help: "Base units burned from blacklisted holders",
		}),
	}
}

func (m *Metrics) IncDecision(decision string) { m.Decisions.WithLabelValues(decision).Inc() }

func (m *Metrics) SetBlacklistSize(n int) { m.BlacklistSize.Set(float64(n)) }

func (m *Metrics) IncBlacklistSize() { m.BlacklistSize.Inc() }

func (m *Metrics) DecBlacklistSize() { m.BlacklistSize.Dec() }

func (m *Metrics) AddWiped(amount uint64) { m.TokensWiped.Add(float64(amount)) }
