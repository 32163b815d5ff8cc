// Package metrics holds the Prometheus instruments exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutations counts ledger mutations by operation and outcome.
var Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fiscus",
	Subsystem: "ledger",
	Name:      "mutations_total",
	Help:      "Total ledger mutations by operation and outcome.",
}, []string{"op", "outcome"})

// Transactions tracks the number of transactions currently held per owner store.
var Transactions = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "fiscus",
	Subsystem: "ledger",
	Name:      "transactions",
	Help:      "Transactions currently held in each owner's in-memory store.",
}, []string{"owner"})

// SyncPublished counts sync messages published to the broker by operation.
var SyncPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fiscus",
	Subsystem: "sync",
	Name:      "published_total",
	Help:      "Total sync messages published by operation.",
}, []string{"op"})

// SyncFailures counts publish attempts that could not reach the broker.
var SyncFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fiscus",
	Subsystem: "sync",
	Name:      "publish_failures_total",
	Help:      "Total sync publish failures.",
})

// SyncProcessed counts worker-side sync messages by operation and outcome.
var SyncProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fiscus",
	Subsystem: "sync",
	Name:      "processed_total",
	Help:      "Total sync messages processed by the worker.",
}, []string{"op", "outcome"})

// RequestDuration tracks HTTP handler latency.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "fiscus",
	Subsystem: "http",
	Name:      "request_duration_ms",
	Help:      "HTTP request latency in milliseconds.",
	Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
}, []string{"method", "route", "status"})

// StatsCacheHits counts derived-view cache hits and misses.
var StatsCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fiscus",
	Subsystem: "stats",
	Name:      "cache_requests_total",
	Help:      "Derived-view cache lookups by result.",
}, []string{"result"})
