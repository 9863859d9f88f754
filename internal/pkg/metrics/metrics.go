// Package metrics 定义服务的 prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 计划动作
const (
	PlanCreated   = "created"
	PlanUpdated   = "updated"
	PlanCancelled = "cancelled"
	PlanCompleted = "completed"
	PlanRejected  = "rejected"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	QuitPlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quit_plans_total",
			Help: "Quit plan lifecycle events by action",
		},
		[]string{"action"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment returns by intent and result",
		},
		[]string{"intent", "result"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Open coach chat websocket connections",
		},
	)

	ProgressLogsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_logs_total",
			Help: "Daily progress logs written",
		},
	)
)
