// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityfixer_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cityfixer_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	IssuesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cityfixer_issues_created_total",
		Help: "Issues created.",
	})

	Upvotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityfixer_upvotes_total",
		Help: "Upvote attempts by result (accepted, duplicate).",
	}, []string{"result"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cityfixer_issue_rate_limited_total",
		Help: "Issue submissions rejected by the rate limiter.",
	})
)
