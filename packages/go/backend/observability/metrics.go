// Package observability owns the Prometheus collectors and the gin
// middleware shared by the worker's HTTP surface.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lenslation"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	translationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation",
			Name:      "requests_total",
			Help:      "Translation requests by outcome.",
		},
		[]string{"outcome"},
	)
	translationLateResults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation",
			Name:      "late_results_total",
			Help:      "Collaborator results discarded because their request had already timed out.",
		},
	)
	translationPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "translation",
			Name:      "pending_requests",
			Help:      "Translation requests awaiting a collaborator result.",
		},
	)
	translationCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "translation",
			Name:      "cache_entries",
			Help:      "Entries in the active language pair cache.",
		},
	)
	languageChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation",
			Name:      "language_changes_total",
			Help:      "Language pair changes that cleared the cache.",
		},
	)
	overlayEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "events_total",
			Help:      "Overlay lifecycle events emitted to the rendering sink.",
		},
		[]string{"type"},
	)
	overlaysLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "live",
			Help:      "Overlays currently displayed.",
		},
	)
	framesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "frames_total",
			Help:      "Frames passed through the detector.",
		},
	)
	regionsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "regions_total",
			Help:      "Text regions proposed by the detector.",
		},
	)
	sinkDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "dropped_events_total",
			Help:      "Events dropped because a sink queue was full.",
		},
		[]string{"sink"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			translationRequests, translationLateResults, translationPending, translationCacheEntries, languageChanges,
			overlayEvents, overlaysLive,
			framesProcessed, regionsDetected,
			sinkDropped,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordTranslation(outcome string) {
	RegisterMetrics()
	translationRequests.WithLabelValues(outcome).Inc()
}

func RecordLateResult() {
	RegisterMetrics()
	translationLateResults.Inc()
}

func SetPendingRequests(n int) {
	RegisterMetrics()
	translationPending.Set(float64(n))
}

func SetCacheEntries(n int) {
	RegisterMetrics()
	translationCacheEntries.Set(float64(n))
}

func RecordLanguageChange() {
	RegisterMetrics()
	languageChanges.Inc()
}

func RecordOverlayEvent(eventType string) {
	RegisterMetrics()
	overlayEvents.WithLabelValues(eventType).Inc()
}

func SetLiveOverlays(n int) {
	RegisterMetrics()
	overlaysLive.Set(float64(n))
}

func RecordFrame(regions int) {
	RegisterMetrics()
	framesProcessed.Inc()
	regionsDetected.Add(float64(regions))
}

func RecordSinkDrop(sink string) {
	RegisterMetrics()
	sinkDropped.WithLabelValues(sink).Inc()
}
