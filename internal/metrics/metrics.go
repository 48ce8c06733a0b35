package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_bookings_total",
			Help: "Total number of bookings created",
		},
		[]string{"status", "checkout"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	SpotsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_booking_rejected_full_total",
			Help: "Booking attempts rejected because the session had no spots left",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_emails_sent_total",
			Help: "Total number of notification emails",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymflow_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	ClientCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_client_api_calls_total",
			Help: "Storefront API client calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ClientCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymflow_client_api_call_duration_seconds",
			Help:    "Storefront API client call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_token_refreshes_total",
			Help: "Access token refresh attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status, checkout string) {
	BookingsTotal.WithLabelValues(status, checkout).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordFullyBooked() {
	SpotsRejectedTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordClientCall(operation string, success bool, duration float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	ClientCallsTotal.WithLabelValues(operation, outcome).Inc()
	ClientCallDuration.WithLabelValues(operation).Observe(duration)
}

func RecordTokenRefresh(success bool) {
	if success {
		TokenRefreshesTotal.WithLabelValues("success").Inc()
		return
	}
	TokenRefreshesTotal.WithLabelValues("failure").Inc()
}
