// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gympro"

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	MembershipNumbersAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_numbers_allocated_total",
		Help:      "Membership numbers handed out by the allocator.",
	})

	// AllocationConflicts counts unique-key collisions that forced a retry.
	AllocationConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocation_conflicts_total",
		Help:      "Unique-key collisions during number allocation.",
	}, []string{"kind"})

	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expiry_reminders_total",
		Help:      "Expiry reminders attempted, by outcome.",
	}, []string{"status"})

	DashboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_cache_lookups_total",
		Help:      "Dashboard snapshot cache lookups, by result.",
	}, []string{"result"})
)
