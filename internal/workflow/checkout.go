package workflow

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/logger"
)

var ErrMissingCheckoutRef = errors.New("checkout session id is required")

type CheckoutAPI interface {
	ConfirmBooking(ctx context.Context, req api.ConfirmBookingRequest) client.Result[api.Booking]
}

// ConfirmCheckout settles the booking behind the session_id the success page
// was opened with. ref is either the bare id or the whole success URL.
// Bookings that are already confirmed come back unchanged.
func ConfirmCheckout(ctx context.Context, c CheckoutAPI, ref string) (api.Booking, error) {
	sessionID := CheckoutRef(ref)
	if sessionID == "" {
		return api.Booking{}, ErrMissingCheckoutRef
	}

	res := c.ConfirmBooking(ctx, api.ConfirmBookingRequest{SessionID: sessionID})
	if !res.Success {
		logger.Info("booking confirmation rejected", "session_id", sessionID, "error", res.Error)
		return api.Booking{}, &BookingError{Message: res.Error}
	}

	logger.Info("booking confirmed", "booking_id", res.Data.ID, "status", res.Data.Status)
	return res.Data, nil
}

// CheckoutRef extracts the session_id query parameter from a success URL.
// Anything that is not a URL is returned trimmed.
func CheckoutRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if !strings.Contains(ref, "?") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get("session_id"))
}
