package client

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/vslbak/gymflow-web/internal/api"
)

// Backends disagree on a few shapes: sessions embed the class as
// "gymflowClass" or "class" or carry only "classId"; bookings reference the
// session as an object or a bare id; older class payloads use "time"
// instead of "classTime"; ids may be numbers. The wire types below accept
// every variant and normalize into the api types.

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type wireUser struct {
	ID       flexString `json:"id"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Phone    string     `json:"phone"`
	Role     string     `json:"role"`
}

func (w wireUser) normalize() api.User {
	return api.User{
		ID:       string(w.ID),
		Email:    w.Email,
		Username: w.Username,
		Phone:    w.Phone,
		Role:     w.Role,
	}
}

type wireClass struct {
	api.GymClass
	ID         flexString `json:"id"`
	LegacyTime string     `json:"time"`
}

func (w wireClass) normalize() api.GymClass {
	c := w.GymClass
	c.ID = string(w.ID)
	if c.ClassTime == "" {
		c.ClassTime = w.LegacyTime
	}
	return c
}

func normalizeClasses(ws []wireClass) []api.GymClass {
	out := make([]api.GymClass, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.normalize())
	}
	return out
}

type wireSession struct {
	ID           flexString `json:"id"`
	ClassID      flexString `json:"classId"`
	GymflowClass *wireClass `json:"gymflowClass"`
	Class        *wireClass `json:"class"`
	Date         string     `json:"date"`
	Time         string     `json:"time"`
	SpotsLeft    int        `json:"spotsLeft"`
}

func (w wireSession) normalize() api.ClassSession {
	s := api.ClassSession{
		ID:        string(w.ID),
		ClassID:   string(w.ClassID),
		Date:      normalizeDate(w.Date),
		Time:      w.Time,
		SpotsLeft: w.SpotsLeft,
	}

	snapshot := w.GymflowClass
	if snapshot == nil {
		snapshot = w.Class
	}
	if snapshot != nil {
		c := snapshot.normalize()
		s.Class = &c
		if s.ClassID == "" {
			s.ClassID = c.ID
		}
		if s.Time == "" {
			s.Time = c.ClassTime
		}
	}
	return s
}

func normalizeSessions(ws []wireSession) []api.ClassSession {
	out := make([]api.ClassSession, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.normalize())
	}
	return out
}

type wireBooking struct {
	ID           flexString      `json:"id"`
	UserID       flexString      `json:"userId"`
	SessionID    flexString      `json:"sessionId"`
	ClassSession json.RawMessage `json:"classSession"`
	Status       string          `json:"status"`
	BookingDate  string          `json:"bookingDate"`
	TotalPrice   float64         `json:"totalPrice"`
	CreatedAt    string          `json:"createdAt"`
	ConfirmedAt  *string         `json:"confirmedAt"`
	CancelledAt  *string         `json:"cancelledAt"`
}

func (w wireBooking) normalize() api.Booking {
	b := api.Booking{
		ID:          string(w.ID),
		UserID:      string(w.UserID),
		SessionID:   string(w.SessionID),
		Status:      w.Status,
		BookingDate: w.BookingDate,
		TotalPrice:  w.TotalPrice,
		ConfirmedAt: parseOptionalTime(w.ConfirmedAt),
		CancelledAt: parseOptionalTime(w.CancelledAt),
	}
	if t, ok := parseTimestamp(w.CreatedAt); ok {
		b.CreatedAt = t
	}

	raw := bytes.TrimSpace(w.ClassSession)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		var ws wireSession
		if err := json.Unmarshal(raw, &ws); err == nil {
			s := ws.normalize()
			if s.ID == "" {
				s.ID = b.SessionID
			}
			b.Session = &s
		}
	default:
		var id flexString
		if err := json.Unmarshal(raw, &id); err == nil && b.SessionID == "" {
			b.SessionID = string(id)
		}
	}
	if b.SessionID == "" && b.Session != nil {
		b.SessionID = b.Session.ID
	}
	return b
}

func normalizeBookings(ws []wireBooking) []api.Booking {
	out := make([]api.Booking, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.normalize())
	}
	return out
}

// normalizeDate trims full timestamps down to YYYY-MM-DD.
func normalizeDate(s string) string {
	if len(s) <= len("2006-01-02") {
		return s
	}
	if t, ok := parseTimestamp(s); ok {
		return t.Format("2006-01-02")
	}
	return s
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func parseOptionalTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := parseTimestamp(*s)
	if !ok {
		return nil
	}
	return &t
}
