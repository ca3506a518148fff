package tx_handler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts handler verdicts. A nil *Metrics records nothing.
type Metrics struct {
	accepted      prometheus.Counter
	rejected      *prometheus.CounterVec
	batchDuration prometheus.Histogram
	batchSize     prometheus.Histogram
}

// NewMetrics registers the handler collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scrooge",
			Subsystem: "tx_handler",
			Name:      "accepted_total",
			Help:      "Transactions applied to the pool.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrooge",
			Subsystem: "tx_handler",
			Name:      "rejected_total",
			Help:      "Transactions turned down, by reason.",
		}, []string{"reason"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scrooge",
			Subsystem: "tx_handler",
			Name:      "batch_duration_seconds",
			Help:      "Time spent handling one batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scrooge",
			Subsystem: "tx_handler",
			Name:      "batch_accepted_size",
			Help:      "Transactions accepted per batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	for _, c := range []prometheus.Collector{m.accepted, m.rejected, m.batchDuration, m.batchSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) accept(n int) {
	if m == nil {
		return
	}
	m.accepted.Add(float64(n))
}

func (m *Metrics) reject(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeBatch(accepted int, d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
	m.batchSize.Observe(float64(accepted))
}
