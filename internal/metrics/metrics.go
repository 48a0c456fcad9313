package metrics

import (
	"strconv"
	"sync"
	"time"

	"shareit/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Booking and comment lifecycle events by type.",
		},
		[]string{"event"},
	)

	quotaRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_quota_rejections_total",
			Help:      "Mutating requests rejected by the per-user quota.",
		},
	)

	limiterDown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quota_primary_down",
			Help:      "1 while the quota limiter runs on its in-memory fallback.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, domainEvents, quotaRejections, limiterDown)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(endpoint string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func IncQuotaRejection() {
	quotaRejections.Inc()
}

// SetLimiterDown flips the failover gauge.
func SetLimiterDown(down bool) {
	if down {
		limiterDown.Set(1)
		return
	}
	limiterDown.Set(0)
}

// SubscribeEvents counts every event published on bus.
func SubscribeEvents(bus *events.EventBus) {
	bus.Subscribe(events.AllEvents, func(event *events.Event) error {
		domainEvents.WithLabelValues(event.Type).Inc()
		return nil
	})
}
