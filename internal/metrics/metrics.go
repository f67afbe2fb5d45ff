package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "betpool"

// Label names
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelCommand = "command"
	LabelOutcome = "outcome"
	LabelMode    = "mode"
	LabelTopic   = "topic"
)

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

// Ledger Metrics
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_commands_total",
			Help:      "Ledger commands by command and outcome",
		},
		[]string{LabelCommand, LabelOutcome},
	)

	StoreCommitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_commit_duration_seconds",
			Help:      "Record store commit latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelCommand},
	)

	BetsPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_placed_total",
			Help:      "Bets placed by pool mode",
		},
		[]string{LabelMode},
	)

	BetsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_settled_total",
			Help:      "Bets settled by outcome",
		},
		[]string{LabelOutcome},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_version",
			Help:      "Current in-memory snapshot version",
		},
	)
)

// Relay Metrics
var (
	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events published to Kafka",
		},
		[]string{LabelTopic},
	)

	OutboxPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_publish_errors_total",
			Help:      "Outbox events that failed to publish",
		},
	)
)

// Board cache
var (
	BoardCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_cache_hits_total",
			Help:      "Board reads served from the projection cache",
		},
	)

	BoardCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_cache_misses_total",
			Help:      "Board reads that recomputed statistics",
		},
	)

	BoardCacheBypassed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_cache_bypassed_total",
			Help:      "Board reads that skipped the cache while its circuit was open",
		},
	)
)
