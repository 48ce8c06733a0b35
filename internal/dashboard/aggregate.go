// Package dashboard classifies a user's bookings and computes the figures
// shown on the user and admin dashboards.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vslbak/gymflow-web/internal/api"
)

type Summary struct {
	Total      int
	Confirmed  int
	Pending    int
	Upcoming   int
	ThisMonth  int
	TotalSpent decimal.Decimal
}

// Aggregates buckets bookings by status and date. Unbucketed holds PENDING
// bookings whose date has passed, or whose date could not be derived; they
// belong to neither Upcoming nor Past.
type Aggregates struct {
	Upcoming   []api.Booking
	Past       []api.Booking
	Cancelled  []api.Booking
	Unbucketed []api.Booking
	Summary    Summary
}

// Aggregate is a pure function of its arguments.
func Aggregate(bookings []api.Booking, now time.Time) Aggregates {
	agg := Aggregates{Summary: Summary{Total: len(bookings), TotalSpent: decimal.Zero}}

	for _, b := range bookings {
		cancelled := b.HasStatus(api.StatusCancelled)
		confirmed := b.HasStatus(api.StatusConfirmed)
		pending := b.HasStatus(api.StatusPending)
		date, hasDate := DerivedDate(b)

		switch {
		case cancelled:
			agg.Cancelled = append(agg.Cancelled, b)
		case hasDate && (confirmed || pending) && date.After(now):
			agg.Upcoming = append(agg.Upcoming, b)
		case hasDate && confirmed:
			agg.Past = append(agg.Past, b)
		default:
			agg.Unbucketed = append(agg.Unbucketed, b)
		}

		if confirmed {
			agg.Summary.Confirmed++
		}
		if pending {
			agg.Summary.Pending++
		}
		if cancelled {
			continue
		}
		agg.Summary.TotalSpent = agg.Summary.TotalSpent.Add(decimal.NewFromFloat(b.TotalPrice))
		if hasDate && sameMonth(date, now) {
			agg.Summary.ThisMonth++
		}
	}
	agg.Summary.Upcoming = len(agg.Upcoming)
	return agg
}

// DerivedDate picks the date used for classification: bookingDate, then the
// session's date, then createdAt. The first value present wins even when it
// does not parse.
func DerivedDate(b api.Booking) (time.Time, bool) {
	switch {
	case b.BookingDate != "":
		return parseDate(b.BookingDate)
	case b.Session != nil && b.Session.Date != "":
		return parseDate(b.Session.Date)
	case !b.CreatedAt.IsZero():
		return b.CreatedAt, true
	}
	return time.Time{}, false
}

// parseDate reads date-only values as UTC midnight.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sameMonth(t, now time.Time) bool {
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}
