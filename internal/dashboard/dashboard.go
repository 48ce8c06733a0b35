package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/clock"
	"github.com/vslbak/gymflow-web/internal/logger"
)

var (
	ErrBookingNotFound  = errors.New("Booking not found")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

// CancelError carries the backend's message for a rejected cancellation.
type CancelError struct {
	Message string
}

func (e *CancelError) Error() string {
	return e.Message
}

type BookingsAPI interface {
	UserBookings(ctx context.Context) client.Result[[]api.Booking]
	ListClasses(ctx context.Context) client.Result[[]api.GymClass]
	CancelBooking(ctx context.Context, id string) client.Result[struct{}]
}

// Entry is a booking with the class it belongs to, when known.
type Entry struct {
	api.Booking
	Class *api.GymClass
}

// Dashboard is the signed-in user's booking overview.
type Dashboard struct {
	api   BookingsAPI
	clock clock.Clock

	mu      sync.RWMutex
	entries []Entry
}

func New(bookingsAPI BookingsAPI, clk clock.Clock) *Dashboard {
	if bookingsAPI == nil {
		panic("dashboard: nil api")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Dashboard{api: bookingsAPI, clock: clk}
}

// Load fetches the user's bookings and attaches each booking's class. A
// failed class fetch leaves the bookings without classes.
func (d *Dashboard) Load(ctx context.Context) error {
	res := d.api.UserBookings(ctx)
	if !res.Success {
		return res.Err()
	}

	classes := map[string]api.GymClass{}
	if cr := d.api.ListClasses(ctx); cr.Success {
		for _, c := range cr.Data {
			classes[c.ID] = c
		}
	} else {
		logger.Warn("failed to load classes for dashboard", "error", cr.Error)
	}

	entries := make([]Entry, 0, len(res.Data))
	for _, b := range res.Data {
		e := Entry{Booking: b}
		if c, ok := classes[b.ClassID()]; ok {
			e.Class = &c
		} else if b.Session != nil && b.Session.Class != nil {
			c := *b.Session.Class
			e.Class = &c
		}
		entries = append(entries, e)
	}

	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Entry(nil), d.entries...)
}

func (d *Dashboard) Bookings() []api.Booking {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]api.Booking, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e.Booking)
	}
	return out
}

// Aggregates classifies the loaded bookings against the current time.
func (d *Dashboard) Aggregates() Aggregates {
	return Aggregate(d.Bookings(), d.clock.Now())
}

// Cancel cancels a booking and marks the local copy CANCELLED without
// re-fetching. Cancelled bookings are never sent to the backend again.
func (d *Dashboard) Cancel(ctx context.Context, id string) error {
	d.mu.RLock()
	idx := d.indexLocked(id)
	var status string
	if idx >= 0 {
		status = d.entries[idx].Status
	}
	d.mu.RUnlock()

	if idx < 0 {
		return ErrBookingNotFound
	}
	if (api.Booking{Status: status}).HasStatus(api.StatusCancelled) {
		return ErrAlreadyCancelled
	}

	res := d.api.CancelBooking(ctx, id)
	if !res.Success {
		logger.Warn("cancel booking failed", "booking_id", id, "error", res.Error)
		return &CancelError{Message: res.Error}
	}

	now := d.clock.Now()
	d.mu.Lock()
	if i := d.indexLocked(id); i >= 0 {
		d.entries[i].Status = api.StatusCancelled
		d.entries[i].CancelledAt = &now
	}
	d.mu.Unlock()
	logger.Info("booking cancelled", "booking_id", id)
	return nil
}

func (d *Dashboard) indexLocked(id string) int {
	for i := range d.entries {
		if d.entries[i].ID == id {
			return i
		}
	}
	return -1
}
