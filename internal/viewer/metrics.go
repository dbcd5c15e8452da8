package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requestDuration   *prometheus.HistogramVec
	navigations       *prometheus.CounterVec
	narrativeFailures prometheus.Counter
	reloads           *prometheus.CounterVec
}

func newMetrics(reg *prometheus.Registry) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &metrics{
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "walkthrough_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		navigations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "walkthrough_navigations_total",
			Help: "Navigations handled, by request kind and result",
		}, []string{"kind", "result"}),
		narrativeFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "walkthrough_narrative_fetch_failures_total",
			Help: "Narrative files that could not be fetched",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "walkthrough_reloads_total",
			Help: "Live reloads triggered by data changes",
		}, []string{"result"}),
	}
}
