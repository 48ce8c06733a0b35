package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vslbak/gymflow-web/internal/api"
)

func newBookingRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("user_id", id)
		}
		c.Next()
	})
	r.POST("/booking/create-session", h.CreateSession)
	r.POST("/booking/confirm", h.Confirm)
	r.GET("/booking/user/bookings", h.UserBookings)
	r.DELETE("/booking/:id", h.Cancel)
	r.GET("/admin/bookings", h.AllBookings)
	return r
}

func doJSON(r http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateSession(t *testing.T) {
	f := newFixture(&fakeProvider{paid: true})
	f.notifier.On("SendBookingConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	r := newBookingRouter(f.svc)

	w := doJSON(r, http.MethodPost, "/booking/create-session", "", api.BookingRequest{ClassSession: "session-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/booking/create-session", "1", map[string]any{"amount": 25})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/booking/create-session", "1", api.BookingRequest{ClassSession: "session-1", Amount: 25})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://pay.example/booking-001"}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/booking/create-session", "2", api.BookingRequest{ClassSession: "session-1", Amount: 25})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"No spots available"}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/booking/create-session", "2", api.BookingRequest{ClassSession: "session-404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CancelFlow(t *testing.T) {
	f := newFixture(&fakeProvider{paid: true})
	f.notifier.On("SendBookingConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("SendCancellation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	r := newBookingRouter(f.svc)

	w := doJSON(r, http.MethodPost, "/booking/create-session", "1", api.BookingRequest{ClassSession: "session-2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/booking/booking-001", "2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodDelete, "/booking/booking-001", "1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Booking cancelled successfully"}`, w.Body.String())

	w = doJSON(r, http.MethodDelete, "/booking/booking-001", "1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodDelete, "/booking/booking-404", "1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Booking not found"}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/booking/user/bookings", "1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bookings []api.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, api.StatusCancelled, bookings[0].Status)
	require.NotNil(t, bookings[0].Session)
	assert.Equal(t, "session-2", bookings[0].Session.ID)
}

func TestHandler_ConfirmRequiresPayment(t *testing.T) {
	provider := &fakeProvider{paid: false}
	f := newFixture(provider)
	r := newBookingRouter(f.svc)

	w := doJSON(r, http.MethodPost, "/booking/create-session", "1", api.BookingRequest{ClassSession: "session-2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/booking/confirm", "1", api.ConfirmBookingRequest{SessionID: "ref-booking-001"})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	provider.verified = true
	f.notifier.On("SendBookingConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w = doJSON(r, http.MethodPost, "/booking/confirm", "1", api.ConfirmBookingRequest{SessionID: "ref-booking-001"})
	require.Equal(t, http.StatusOK, w.Code)
	var b api.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, api.StatusConfirmed, b.Status)

	w = doJSON(r, http.MethodGet, "/admin/bookings", "2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []api.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}
