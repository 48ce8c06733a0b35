package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/checkout"
	"github.com/vslbak/gymflow-web/internal/email"
	"github.com/vslbak/gymflow-web/internal/gym"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/metrics"
	"github.com/vslbak/gymflow-web/internal/user"
)

var (
	ErrForbidden         = errors.New("You can only manage your own bookings")
	ErrPaymentIncomplete = errors.New("Payment has not been completed")
	ErrCheckoutFailed    = errors.New("Failed to start checkout")
)

// Users resolves the recipient of booking emails.
type Users interface {
	GetByID(ctx context.Context, userID string) (*user.User, error)
}

type Service interface {
	// Create reserves a spot and returns the checkout redirect.
	Create(ctx context.Context, userID string, req api.BookingRequest) (*api.BookingResponse, error)
	Confirm(ctx context.Context, userID, checkoutRef string) (*api.Booking, error)
	Cancel(ctx context.Context, userID, bookingID string) error
	ListForUser(ctx context.Context, userID string) ([]api.Booking, error)
	ListAll(ctx context.Context) ([]api.Booking, error)
}

type service struct {
	repo     Repository
	gym      gym.Service
	users    Users
	provider checkout.Provider
	notifier email.Notifier
}

func NewService(repo Repository, gymService gym.Service, users Users, provider checkout.Provider, notifier email.Notifier) Service {
	return &service{
		repo:     repo,
		gym:      gymService,
		users:    users,
		provider: provider,
		notifier: notifier,
	}
}

func (s *service) Create(ctx context.Context, userID string, req api.BookingRequest) (*api.BookingResponse, error) {
	sessionID := strings.TrimSpace(req.ClassSession)
	snapshot, err := s.gym.SessionWithClass(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gym.ReserveSpot(ctx, sessionID); err != nil {
		if errors.Is(err, gym.ErrNoSpotsAvailable) {
			metrics.RecordFullyBooked()
		}
		return nil, err
	}

	details := detailsOf(snapshot)
	b, err := s.repo.Create(ctx, Booking{
		UserID:      userID,
		SessionID:   sessionID,
		Status:      api.StatusPending,
		BookingDate: snapshot.Date,
		TotalPrice:  details.Price,
	})
	if err != nil {
		s.release(ctx, sessionID)
		return nil, err
	}

	u := s.lookupUser(ctx, userID)
	checkoutReq := checkout.Request{
		BookingID: b.ID,
		SessionID: sessionID,
		ClassName: details.ClassName,
		Amount:    details.Price,
	}
	if u != nil {
		checkoutReq.CustomerEmail = u.Email
	}

	res, err := s.provider.Start(ctx, checkoutReq)
	if err == nil {
		err = s.repo.SetCheckoutRef(ctx, b.ID, res.Reference)
	}
	if err != nil {
		logger.Error("Checkout failed", "booking_id", b.ID, "provider", s.provider.Name(), "error", err)
		s.rollback(ctx, b.ID, sessionID)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	if res.Paid {
		confirmed, err := s.repo.Confirm(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b = confirmed
		s.notifyConfirmed(ctx, u, details)
	}

	metrics.RecordBooking(b.Status, s.provider.Name())
	logger.Info("Booking created", "booking_id", b.ID, "user_id", userID, "session_id", sessionID, "status", b.Status)

	return &api.BookingResponse{URL: res.URL}, nil
}

func (s *service) Confirm(ctx context.Context, userID, checkoutRef string) (*api.Booking, error) {
	b, err := s.repo.GetByCheckoutRef(ctx, checkoutRef)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}

	switch b.Status {
	case api.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case api.StatusConfirmed:
		return s.enrich(ctx, *b, nil), nil
	}

	paid, err := s.provider.Verify(ctx, checkoutRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	if !paid {
		return nil, ErrPaymentIncomplete
	}

	confirmed, err := s.repo.Confirm(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	metrics.RecordBooking(confirmed.Status, s.provider.Name())

	out := s.enrich(ctx, *confirmed, nil)
	if out.Session != nil {
		s.notifyConfirmed(ctx, s.lookupUser(ctx, userID), detailsOf(out.Session))
	}
	return out, nil
}

func (s *service) Cancel(ctx context.Context, userID, bookingID string) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrForbidden
	}

	if _, err := s.repo.Cancel(ctx, bookingID); err != nil {
		return err
	}
	s.release(ctx, b.SessionID)
	metrics.RecordBookingCancellation()

	if u := s.lookupUser(ctx, userID); u != nil && s.notifier != nil {
		snapshot, err := s.gym.SessionWithClass(ctx, b.SessionID)
		if err == nil {
			if err := s.notifier.SendCancellation(ctx, u.Email, u.Username, detailsOf(snapshot)); err != nil {
				logger.Warn("Failed to send cancellation email", "booking_id", bookingID, "error", err)
			}
		}
	}

	logger.Info("Booking cancelled", "booking_id", bookingID, "user_id", userID)
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]api.Booking, error) {
	bookings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(ctx, bookings), nil
}

func (s *service) ListAll(ctx context.Context) ([]api.Booking, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(ctx, bookings), nil
}

func (s *service) enrichAll(ctx context.Context, bookings []Booking) []api.Booking {
	cache := make(map[string]*api.ClassSession)
	out := make([]api.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, *s.enrich(ctx, b, cache))
	}
	return out
}

// enrich attaches the session snapshot. Bookings whose session is gone are
// returned without one.
func (s *service) enrich(ctx context.Context, b Booking, cache map[string]*api.ClassSession) *api.Booking {
	snapshot, cached := cache[b.SessionID]
	if !cached {
		var err error
		snapshot, err = s.gym.SessionWithClass(ctx, b.SessionID)
		if err != nil {
			if !errors.Is(err, gym.ErrSessionNotFound) && !errors.Is(err, gym.ErrClassNotFound) {
				logger.Warn("Failed to load booking session", "booking_id", b.ID, "session_id", b.SessionID, "error", err)
			}
			snapshot = nil
		}
		if cache != nil {
			cache[b.SessionID] = snapshot
		}
	}
	out := b.ToAPI(snapshot)
	return &out
}

func (s *service) release(ctx context.Context, sessionID string) {
	if _, err := s.gym.ReleaseSpot(ctx, sessionID); err != nil {
		logger.Warn("Failed to release spot", "session_id", sessionID, "error", err)
	}
}

func (s *service) rollback(ctx context.Context, bookingID, sessionID string) {
	if err := s.repo.Delete(ctx, bookingID); err != nil {
		logger.Warn("Failed to remove unpaid booking", "booking_id", bookingID, "error", err)
	}
	s.release(ctx, sessionID)
}

func (s *service) lookupUser(ctx context.Context, userID string) *user.User {
	if s.users == nil {
		return nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		logger.Warn("Failed to load booking user", "user_id", userID, "error", err)
		return nil
	}
	return u
}

func (s *service) notifyConfirmed(ctx context.Context, u *user.User, details email.BookingDetails) {
	if u == nil || s.notifier == nil {
		return
	}
	if err := s.notifier.SendBookingConfirmation(ctx, u.Email, u.Username, details); err != nil {
		logger.Warn("Failed to send booking confirmation", "user_id", u.ID, "error", err)
	}
}

func detailsOf(session *api.ClassSession) email.BookingDetails {
	d := email.BookingDetails{Date: session.Date, Time: session.Time}
	if session.Class != nil {
		d.ClassName = session.Class.Name
		d.Location = session.Class.Location
		d.Price = session.Class.Price
		if d.Time == "" {
			d.Time = session.Class.ClassTime
		}
	}
	return d
}
