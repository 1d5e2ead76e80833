package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the token ledger.
type Metrics struct {
	Transfers     *prometheus.CounterVec
	HookDuration  prometheus.Histogram
	TokensMinted  prometheus.Counter
	TokensBurned  *prometheus.CounterVec
	FeesWithheld  prometheus.Counter
	FeesWithdrawn prometheus.Counter
}

// New creates ledger metrics registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transfers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_ledger_transfers_total",
			Help: "Transfers by outcome: completed, denied, failed",
		}, []string{"outcome"}),
		HookDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "aurum_ledger_transfer_hook_duration_seconds",
			Help:    "Time spent in the transfer hook",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		TokensMinted: f.NewCounter(prometheus.CounterOpts{
			Name: "aurum_ledger_tokens_minted_total",
			Help: "Base units minted",
		}),
		TokensBurned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_ledger_tokens_burned_total",
			Help: "Base units burned by authority kind",
		}, []string{"authority"}),
		FeesWithheld: f.NewCounter(prometheus.CounterOpts{
			Name: "aurum_ledger_fees_withheld_total",
			Help: "Base units withheld as transfer fees",
		}),
		FeesWithdrawn: f.NewCounter(prometheus.CounterOpts{
			Name: "aurum_ledger_fees_withdrawn_total",
			Help: "Base units of withheld fees withdrawn",
		}),
	}
}

func (m *Metrics) IncTransfer(outcome string) { m.Transfers.WithLabelValues(outcome).Inc() }

func (m *Metrics) ObserveHook(seconds float64) { m.HookDuration.Observe(seconds) }

func (m *Metrics) AddMinted(amount uint64) { m.TokensMinted.Add(float64(amount)) }

func (m *Metrics) AddBurned(authority string, amount uint64) {
	m.TokensBurned.WithLabelValues(authority).Add(float64(amount))
}

func (m *Metrics) AddWithheld(amount uint64) { m.FeesWithheld.Add(float64(amount)) }

func (m *Metrics) AddWithdrawn(amount uint64) { m.FeesWithdrawn.Add(float64(amount)) }
