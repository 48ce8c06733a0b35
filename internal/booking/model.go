package booking

import (
	"time"

	"github.com/vslbak/gymflow-web/internal/api"
)

type Booking struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"userId"`
	SessionID   string     `db:"session_id" json:"sessionId"`
	Status      string     `db:"status" json:"status"`
	BookingDate string     `db:"booking_date" json:"bookingDate"`
	TotalPrice  float64    `db:"total_price" json:"totalPrice"`
	CheckoutRef string     `db:"checkout_ref" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmedAt"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`
}

// ToAPI renders the booking with an optional session snapshot.
func (b *Booking) ToAPI(session *api.ClassSession) api.Booking {
	return api.Booking{
		ID:          b.ID,
		UserID:      b.UserID,
		SessionID:   b.SessionID,
		Session:     session,
		Status:      b.Status,
		BookingDate: b.BookingDate,
		TotalPrice:  b.TotalPrice,
		CreatedAt:   b.CreatedAt,
		ConfirmedAt: b.ConfirmedAt,
		CancelledAt: b.CancelledAt,
	}
}
