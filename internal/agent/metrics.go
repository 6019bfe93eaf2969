package agent

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portview_agent"

type metrics struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	connections   prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Connection fetches served, by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent enumerating sockets.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Sockets seen by the last successful fetch.",
		}),
	}
	reg.MustRegister(m.fetchTotal, m.fetchDuration, m.connections)
	return m
}
