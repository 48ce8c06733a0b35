package integration

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/booking"
	"github.com/vslbak/gymflow-web/internal/checkout"
	"github.com/vslbak/gymflow-web/internal/db"
	"github.com/vslbak/gymflow-web/internal/email"
	"github.com/vslbak/gymflow-web/internal/gym"
	"github.com/vslbak/gymflow-web/internal/seed"
	"github.com/vslbak/gymflow-web/internal/user"
)

func TestSeedIntoPostgres_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.IsEmpty(ctx, database)
	require.NoError(t, err)
	require.True(t, empty)

	target := seeded(t, database)

	empty, err = db.IsEmpty(ctx, database)
	require.NoError(t, err)
	assert.False(t, empty)

	gymService := gym.NewService(target.Gym)
	classes, err := gymService.ListClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, 15)

	sessions, err := gymService.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 54)

	all, err := target.Bookings.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 18)

	john, err := target.Users.FindByEmail(ctx, "test@gymflow.com")
	require.NoError(t, err)
	mine, err := target.Bookings.ListByUser(ctx, john.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 5)
}

func TestLastSpotIsReservedOnce_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	target := seeded(t, database)
	gymService := gym.NewService(target.Gym)

	session, err := gymService.CreateSession(ctx, api.CreateSessionRequest{
		ClassID:   "class-1",
		Date:      "2027-01-15",
		Time:      "07:00",
		SpotsLeft: 1,
	})
	require.NoError(t, err)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		noSpots int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gymService.ReserveSpot(ctx, session.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case assert.ErrorIs(t, err, gym.ErrNoSpotsAvailable):
				noSpots++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, noSpots)

	got, err := gymService.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SpotsLeft)
}

func TestBookAndCancel_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	target := seeded(t, database)

	issuer, err := auth.NewTokenIssuer("integration-secret")
	require.NoError(t, err)
	mailer := email.NewMailer(email.LogTransport{})
	userService := user.NewService(target.Users, issuer, mailer)
	gymService := gym.NewService(target.Gym)
	bookings := booking.NewService(target.Bookings, gymService, userService,
		checkout.NewRedirectProvider("http://storefront.test"), mailer)

	john, err := target.Users.FindByEmail(ctx, "test@gymflow.com")
	require.NoError(t, err)

	before, err := gymService.GetSession(ctx, "session-10")
	require.NoError(t, err)

	res, err := bookings.Create(ctx, john.ID, api.BookingRequest{ClassSession: "session-10"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.URL, "http://storefront.test/booking/success?session_id="))

	after, err := gymService.GetSession(ctx, "session-10")
	require.NoError(t, err)
	assert.Equal(t, before.SpotsLeft-1, after.SpotsLeft)

	mine, err := bookings.ListForUser(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, mine, 6)

	var created *api.Booking
	for i := range mine {
		if !strings.HasPrefix(mine[i].ID, "booking-") {
			created = &mine[i]
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, api.StatusConfirmed, created.Status, "redirect checkout confirms immediately")
	assert.Equal(t, "session-10", created.SessionID)
	assert.Equal(t, seed.Classes()[2].Price, created.TotalPrice)

	require.NoError(t, bookings.Cancel(ctx, john.ID, created.ID))
	assert.ErrorIs(t, bookings.Cancel(ctx, john.ID, created.ID), booking.ErrAlreadyCancelled)

	released, err := gymService.GetSession(ctx, "session-10")
	require.NoError(t, err)
	assert.Equal(t, before.SpotsLeft, released.SpotsLeft)
}
