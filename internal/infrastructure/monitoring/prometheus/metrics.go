package prometheus

import (
	"strconv"
	"time"
)

// EngineMetrics holds the metric vectors emitted by the general applications engine.
type EngineMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	FeeComputationsTotal CounterVec
	FeeLookupDuration    HistogramVec
	FeeLookupRetries     CounterVec

	DecisionsClassifiedTotal CounterVec
	StateTransitionsTotal    CounterVec
	NotificationsTotal       CounterVec

	HwfEventsTotal CounterVec

	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessageProcessDuration HistogramVec
	MessagesInFlight       GaugeVec

	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultLookupDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10}
)

// NewEngineMetrics registers every engine metric with collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	return &EngineMetrics{
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),

		FeeComputationsTotal: collector.RegisterCounter("fee_computations_total", "Fee computations by outcome", "code", "status"),
		FeeLookupDuration:    collector.RegisterHistogram("fee_lookup_duration_seconds", "Fee registry lookup duration", DefaultLookupDurationBuckets, "keyword"),
		FeeLookupRetries:     collector.RegisterCounter("collaborator_retries_total", "Collaborator calls retried after credential refresh", "operation"),

		DecisionsClassifiedTotal: collector.RegisterCounter("decisions_classified_total", "Judicial decisions by notification criterion", "criterion"),
		StateTransitionsTotal:    collector.RegisterCounter("state_transitions_total", "Case state transitions", "from", "to"),
		NotificationsTotal:       collector.RegisterCounter("notifications_total", "Notifications dispatched", "template", "status"),

		HwfEventsTotal: collector.RegisterCounter("hwf_events_total", "Help with fees events applied", "event", "fee_type", "outcome"),

		CacheHitsTotal:         collector.RegisterCounter("cache_hits_total", "Cache hits", "cache"),
		CacheMissesTotal:       collector.RegisterCounter("cache_misses_total", "Cache misses", "cache"),
		MessageProcessDuration: collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "topic"),
		MessagesInFlight:       collector.RegisterGauge("mq_in_flight", "Messages being processed", "topic"),

		ErrorsTotal: collector.RegisterCounter("errors_total", "Total errors", "component", "code"),
	}
}

func RecordHTTPRequest(m *EngineMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordCacheAccess(m *EngineMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func RecordError(m *EngineMetrics, component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// NewNopEngineMetrics returns metrics that discard every observation.
func NewNopEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		HTTPRequestsTotal:        noopCounterVec{},
		HTTPRequestDuration:      noopHistogramVec{},
		FeeComputationsTotal:     noopCounterVec{},
		FeeLookupDuration:        noopHistogramVec{},
		FeeLookupRetries:         noopCounterVec{},
		DecisionsClassifiedTotal: noopCounterVec{},
		StateTransitionsTotal:    noopCounterVec{},
		NotificationsTotal:       noopCounterVec{},
		HwfEventsTotal:           noopCounterVec{},
		CacheHitsTotal:           noopCounterVec{},
		CacheMissesTotal:         noopCounterVec{},
		MessageProcessDuration:   noopHistogramVec{},
		MessagesInFlight:         noopGaugeVec{},
		ErrorsTotal:              noopCounterVec{},
	}
}

//Personal.AI order the ending
