package email

import (
	"context"
	"fmt"
	"time"

	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/metrics"
)

const (
	KindWelcome      = "welcome"
	KindConfirmation = "booking_confirmation"
	KindCancellation = "booking_cancellation"
)

// Job is one outgoing email as it travels through a Transport.
type Job struct {
	Kind    string    `json:"kind"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Transport interface {
	Enqueue(ctx context.Context, job Job) error
}

// BookingDetails describes the class occurrence an email refers to.
type BookingDetails struct {
	ClassName string
	Date      string
	Time      string
	Location  string
	Price     float64
}

type Notifier interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendBookingConfirmation(ctx context.Context, to, name string, details BookingDetails) error
	SendCancellation(ctx context.Context, to, name string, details BookingDetails) error
}

// Mailer renders GymFlow emails and hands them to a transport.
type Mailer struct {
	transport Transport
	now       func() time.Time
}

func NewMailer(transport Transport) *Mailer {
	if transport == nil {
		transport = LogTransport{}
	}
	return &Mailer{transport: transport, now: time.Now}
}

func (m *Mailer) send(ctx context.Context, kind, to, name, subject, body string) error {
	job := Job{
		Kind:    kind,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: m.now(),
	}
	if err := m.transport.Enqueue(ctx, job); err != nil {
		metrics.RecordEmail(kind, "enqueue_failed")
		logger.Errorf("Failed to queue %s email to %s: %v", kind, to, err)
		return err
	}
	metrics.RecordEmail(kind, "queued")
	return nil
}

func (m *Mailer) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(`Hi %s,

Welcome to GymFlow! Your account is ready.

Browse the schedule and book your first class whenever you like.

- GymFlow Team`, name)

	return m.send(ctx, KindWelcome, to, name, "Welcome to GymFlow", body)
}

func (m *Mailer) SendBookingConfirmation(ctx context.Context, to, name string, d BookingDetails) error {
	subject := "Booking Confirmed - " + d.ClassName
	body := fmt.Sprintf(`Hi %s,

Your booking is confirmed!

Class: %s
When: %s
Where: %s
Paid: $%.2f

See you at the gym!

- GymFlow Team`, name, d.ClassName, d.when(), d.Location, d.Price)

	return m.send(ctx, KindConfirmation, to, name, subject, body)
}

func (m *Mailer) SendCancellation(ctx context.Context, to, name string, d BookingDetails) error {
	subject := "Booking Cancelled - " + d.ClassName
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled:

Class: %s
When: %s

- GymFlow Team`, name, d.ClassName, d.when())

	return m.send(ctx, KindCancellation, to, name, subject, body)
}

func (d BookingDetails) when() string {
	t, err := time.Parse("2006-01-02 15:04", d.Date+" "+d.Time)
	if err != nil {
		if d.Time == "" {
			return d.Date
		}
		return d.Date + " " + d.Time
	}
	return t.Format("Jan 2, 2006 at 3:04 PM")
}

// LogTransport only logs jobs. It is used when no Redis queue is configured.
type LogTransport struct{}

func (LogTransport) Enqueue(_ context.Context, job Job) error {
	logger.Info("Email (not delivered)", "kind", job.Kind, "to", job.To, "subject", job.Subject)
	return nil
}

var _ Notifier = (*Mailer)(nil)
