package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/booking"
	"github.com/vslbak/gymflow-web/internal/gym"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/user"
)

// Target is the set of stores the demo data goes into.
type Target struct {
	Users    user.Repository
	Gym      gym.Repository
	Bookings booking.Repository
}

// bookingLoader is implemented by stores that can keep historical
// timestamps as given.
type bookingLoader interface {
	Load(bookings []booking.Booking)
}

// Load writes the demo users, classes, sessions and bookings with dates
// relative to now. Users that already exist are reused.
func Load(ctx context.Context, t Target, now time.Time) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	userIDs := make(map[string]string, len(Users))
	for _, u := range Users {
		created, err := t.Users.Create(ctx, u.Username, u.Email, u.Phone, hash, u.Role)
		if errors.Is(err, user.ErrEmailExists) {
			created, err = t.Users.FindByEmail(ctx, u.Email)
		}
		if err != nil {
			return fmt.Errorf("seed: user %s: %w", u.Email, err)
		}
		userIDs[u.Key] = created.ID
	}

	classes := Classes()
	for _, c := range classes {
		if _, err := t.Gym.CreateClass(ctx, c); err != nil {
			return fmt.Errorf("seed: class %s: %w", c.ID, err)
		}
	}

	sessions := Sessions(now)
	for _, s := range sessions {
		if _, err := t.Gym.CreateSession(ctx, s); err != nil {
			return fmt.Errorf("seed: session %s: %w", s.ID, err)
		}
	}

	bookings := Bookings(now, userIDs)
	if loader, ok := t.Bookings.(bookingLoader); ok {
		loader.Load(bookings)
	} else {
		for _, b := range bookings {
			if err := replay(ctx, t.Bookings, b); err != nil {
				return fmt.Errorf("seed: booking %s: %w", b.ID, err)
			}
		}
	}

	logger.Info("Demo data loaded",
		"users", len(userIDs),
		"classes", len(classes),
		"sessions", len(sessions),
		"bookings", len(bookings),
	)
	return nil
}

// replay walks a booking through the regular transitions.
func replay(ctx context.Context, repo booking.Repository, b booking.Booking) error {
	status := b.Status
	b.Status = api.StatusPending
	created, err := repo.Create(ctx, b)
	if err != nil {
		return err
	}

	switch status {
	case api.StatusConfirmed:
		_, err = repo.Confirm(ctx, created.ID)
	case api.StatusCancelled:
		_, err = repo.Cancel(ctx, created.ID)
	}
	return err
}
