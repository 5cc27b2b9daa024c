package poller

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go-netmap/internal/mib"
)

// Metrics are the poller's prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	polls     *prometheus.CounterVec
	duration  prometheus.Histogram
	supported *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netmap",
			Name:      "polls_total",
			Help:      "Switch polls by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "netmap",
			Name:      "poll_duration_seconds",
			Help:      "Time to poll one switch.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		supported: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "netmap",
			Name:      "supported_mibs",
			Help:      "MIBs a switch implemented at its last poll.",
		}, []string{"switch"}),
	}
	reg.MustRegister(m.polls, m.duration, m.supported)
	return m
}

func (m *Metrics) observe(name string, doc *mib.Document, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(took.Seconds())
	m.polls.WithLabelValues(result(err)).Inc()
	if doc != nil {
		m.supported.WithLabelValues(name).Set(float64(len(doc.Misc.Supported)))
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, mib.ErrUnreachable):
		return "unreachable"
	case errors.Is(err, mib.ErrNothingSupported):
		return "unsupported"
	}
	return "error"
}
