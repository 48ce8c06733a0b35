package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/dashboard"
	"github.com/vslbak/gymflow-web/internal/duration"
	"github.com/vslbak/gymflow-web/internal/workflow"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}

func price(p float64) string {
	return money(decimal.NewFromFloat(p))
}

func printClasses(w io.Writer, classes []api.GymClass) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tLEVEL\tDURATION\tTIME\tPRICE\tSPOTS")
	for _, c := range classes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			c.ID, c.Name, c.Category, c.Level, duration.Humanize(c.Duration), c.ClassTime, price(c.Price), c.TotalSpots)
	}
	tw.Flush()
}

func printClassPage(w io.Writer, page *workflow.ClassPage) {
	c := page.Class()
	fmt.Fprintf(w, "%s with %s\n", c.Name, c.Instructor)
	fmt.Fprintf(w, "%s · %s · %s · %s\n", c.Category, c.Level, duration.Humanize(c.Duration), price(c.Price))
	if c.Location != "" {
		fmt.Fprintf(w, "Location: %s\n", c.Location)
	}
	if len(c.DaysOfWeek) > 0 {
		fmt.Fprintf(w, "Runs: %s at %s\n", strings.Join(c.DaysOfWeek, ", "), c.ClassTime)
	}
	if c.Description != "" {
		fmt.Fprintf(w, "\n%s\n", c.Description)
	}
	if len(c.WhatToBring) > 0 {
		fmt.Fprintf(w, "\nWhat to bring: %s\n", strings.Join(c.WhatToBring, ", "))
	}

	if err := page.LoadError(); err != nil {
		fmt.Fprintf(w, "\nSessions unavailable: %v\n", err)
		return
	}
	dates := page.AvailableDates()
	if len(dates) == 0 {
		fmt.Fprintln(w, "\nNo upcoming sessions.")
		return
	}
	fmt.Fprintf(w, "\nDates: %s\n", strings.Join(dates, ", "))

	avail, ok := page.Availability()
	if !ok {
		fmt.Fprintf(w, "No session on %s.\n", page.SelectedDate())
		return
	}
	switch {
	case avail.FullyBooked:
		fmt.Fprintf(w, "%s: fully booked\n", page.SelectedDate())
	case avail.Low:
		fmt.Fprintf(w, "%s: only %d of %d spots left\n", page.SelectedDate(), avail.SpotsLeft, avail.TotalSpots)
	default:
		fmt.Fprintf(w, "%s: %d of %d spots left\n", page.SelectedDate(), avail.SpotsLeft, avail.TotalSpots)
	}
}

func className(b api.Booking) string {
	if b.Session != nil && b.Session.Class != nil {
		return b.Session.Class.Name
	}
	return b.ClassID()
}

func bookingDate(b api.Booking) string {
	if b.BookingDate != "" {
		return b.BookingDate
	}
	if b.Session != nil {
		return b.Session.Date
	}
	return b.CreatedAt.Format("2006-01-02")
}

func printBookings(w io.Writer, title string, bookings []api.Booking) {
	if len(bookings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(bookings))
	tw := table(w)
	fmt.Fprintln(tw, "ID\tCLASS\tDATE\tSTATUS\tPRICE")
	for _, b := range bookings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, className(b), bookingDate(b), b.Status, price(b.TotalPrice))
	}
	tw.Flush()
}

func printDashboard(w io.Writer, agg dashboard.Aggregates) {
	s := agg.Summary
	fmt.Fprintf(w, "Bookings: %d  Confirmed: %d  Pending: %d  Upcoming: %d  This month: %d  Spent: %s\n",
		s.Total, s.Confirmed, s.Pending, s.Upcoming, s.ThisMonth, money(s.TotalSpent))
	if s.Total == 0 {
		fmt.Fprintln(w, "No bookings yet. Browse classes with `storefront classes`.")
		return
	}
	printBookings(w, "Upcoming", agg.Upcoming)
	printBookings(w, "Past", agg.Past)
	printBookings(w, "Cancelled", agg.Cancelled)
	printBookings(w, "Needs attention", agg.Unbucketed)
}

func printSessions(w io.Writer, sessions []api.ClassSession) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tCLASS\tDATE\tTIME\tSPOTS LEFT")
	for _, s := range sessions {
		name := s.ClassID
		t := s.Time
		if s.Class != nil {
			name = s.Class.Name
			if t == "" {
				t = s.Class.ClassTime
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.ID, name, s.Date, t, s.SpotsLeft)
	}
	tw.Flush()
}

func printStats(w io.Writer, st dashboard.Stats) {
	fmt.Fprintf(w, "Revenue: %s  Bookings: %d  Confirmed: %d  Cancelled: %d  Classes: %d\n",
		money(st.TotalRevenue), st.Total, st.Confirmed, st.Cancelled, st.Classes)

	if len(st.Popular) > 0 {
		fmt.Fprintln(w, "\nPopular classes")
		tw := table(w)
		fmt.Fprintln(tw, "CLASS\tBOOKINGS\tREVENUE")
		for _, p := range st.Popular {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Class.Name, p.Bookings, money(p.Revenue))
		}
		tw.Flush()
	}
	printBookings(w, "Recent bookings", st.Recent)
}
