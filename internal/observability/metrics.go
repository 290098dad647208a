package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UnreadCount mirrors the current value of each unread counter.
	UnreadCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "islandmarket_unread_count",
		Help: "Current value of each unread counter",
	}, []string{"counter"})

	// CounterOperations counts counter mutations by counter and operation.
	CounterOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "islandmarket_counter_operations_total",
		Help: "Total unread counter mutations by operation",
	}, []string{"counter", "operation"})

	// GuardAmbiguities counts chat messages carrying more than one variant marker.
	GuardAmbiguities = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "islandmarket_guard_ambiguities_total",
		Help: "Total chat messages resolved by marker precedence",
	}, []string{"resolved"})

	// MappingFailures counts documents rejected by the mappers.
	MappingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "islandmarket_mapping_failures_total",
		Help: "Total raw documents rejected by kind",
	}, []string{"kind"})

	// SanitizedRunes counts code points replaced by the sanitizer.
	SanitizedRunes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "islandmarket_sanitized_runes_total",
		Help: "Total code points replaced by the content sanitizer by category",
	}, []string{"category"})

	// ClassifierErrors counts classifier failures surfaced by the sanitizer.
	ClassifierErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "islandmarket_classifier_errors_total",
		Help: "Total content classifier failures",
	})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "islandmarket_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// UnreadEventsTotal counts unread events applied from pub/sub.
	UnreadEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "islandmarket_unread_events_total",
		Help: "Total unread events received by kind and operation",
	}, []string{"kind", "operation"})
)
