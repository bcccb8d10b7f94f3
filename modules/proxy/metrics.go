package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "radioproxy"

const (
	endpointStream   = "stream"
	endpointMeta     = "meta"
	endpointDownload = "download"
)

var (
	metricBackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "backend_requests_total",
		Help:      "Calls made to the radio backend, by endpoint and result.",
	}, []string{"endpoint", "result"})

	metricBackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Time until the backend answered. For streams this is the time to open the stream.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	metricStreamBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "stream_bytes_total",
		Help:      "Audio bytes relayed to stream clients.",
	}, []string{"station"})

	metricActiveStreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "active_streams",
		Help:      "Stream clients currently connected.",
	}, []string{"station"})
)
