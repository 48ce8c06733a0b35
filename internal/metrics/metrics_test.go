package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/classes", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/classes", "200"))
	assert.Equal(t, float64(1), count)
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/auth/login", "401", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "401")))
}

func TestRecordBooking(t *testing.T) {
	BookingsTotal.Reset()

	RecordBooking("CONFIRMED", "redirect")
	RecordBooking("CONFIRMED", "redirect")
	RecordBooking("PENDING", "stripe")

	assert.Equal(t, float64(2), testutil.ToFloat64(BookingsTotal.WithLabelValues("CONFIRMED", "redirect")))
	assert.Equal(t, float64(1), testutil.ToFloat64(BookingsTotal.WithLabelValues("PENDING", "stripe")))
}

func TestRecordBookingCancellation(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_booking_cancellations_total_test",
			Help: "Total number of booking cancellations",
		},
	)

	oldCounter := BookingCancellationsTotal
	BookingCancellationsTotal = testCounter
	defer func() { BookingCancellationsTotal = oldCounter }()

	RecordBookingCancellation()
	RecordBookingCancellation()

	assert.Equal(t, float64(2), testutil.ToFloat64(testCounter))
}

func TestRecordEmailMultipleTypes(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("booking_confirmation", "success")
	RecordEmail("booking_confirmation", "failed")
	RecordEmail("welcome", "success")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_confirmation", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_confirmation", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("welcome", "success")))
}

func TestRecordClientCall(t *testing.T) {
	ClientCallsTotal.Reset()

	RecordClientCall("create_booking", true, 0.02)
	RecordClientCall("create_booking", false, 0.03)
	RecordClientCall("create_booking", false, 0.01)

	assert.Equal(t, float64(1), testutil.ToFloat64(ClientCallsTotal.WithLabelValues("create_booking", "success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(ClientCallsTotal.WithLabelValues("create_booking", "failure")))
}

func TestRecordTokenRefresh(t *testing.T) {
	TokenRefreshesTotal.Reset()

	RecordTokenRefresh(true)
	RecordTokenRefresh(false)
	RecordTokenRefresh(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(TokenRefreshesTotal.WithLabelValues("success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(TokenRefreshesTotal.WithLabelValues("failure")))
}

func TestEmailQueueLength(t *testing.T) {
	EmailQueueLength.Set(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(EmailQueueLength))

	EmailQueueLength.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(EmailQueueLength))
}
