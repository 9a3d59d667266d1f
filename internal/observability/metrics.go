package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rakb", Name: "bookings_created_total", Help: "Total bookings created"})

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rakb", Name: "booking_status_transitions_total", Help: "Booking status transitions"},
		[]string{"to"},
	)

	InspectionPhotoUploadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rakb", Name: "inspection_photo_upload_failures_total", Help: "Failed inspection photo uploads"})

	NotificationsPushedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rakb", Name: "notifications_pushed_total", Help: "Notifications pushed over websocket"})

	WSSessionsOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rakb", Name: "ws_sessions_online", Help: "Connected websocket sessions"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rakb", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rakb",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
