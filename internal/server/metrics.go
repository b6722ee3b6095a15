package server

import (
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const successOutcome = "success"

type metrics struct {
	analyses *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debtlens",
			Name:      "analyses_total",
			Help:      "Total number of analyses by kind and outcome",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "debtlens",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of analyses in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // from 10ms to ~80s
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.analyses,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// observe records the outcome and duration of one analysis.
func (m *metrics) observe(kind string, start time.Time, err error) {
	outcome := successOutcome
	if err != nil {
		outcome = contract.ErrorCode(err)
	}
	m.analyses.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
