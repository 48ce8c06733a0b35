package mockapi

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/clock"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/seed"
	"github.com/vslbak/gymflow-web/internal/session"
	"github.com/vslbak/gymflow-web/internal/storage"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// staticToken is a fixed bearer token.
type staticToken string

func (s staticToken) Token() string { return string(s) }

func newMock(t *testing.T) *API {
	t.Helper()
	m, err := NewSeeded(context.Background(), testNow, "http://storefront.test")
	require.NoError(t, err)
	return m
}

func signIn(t *testing.T, m *API, email string) *session.Manager {
	t.Helper()
	mgr := session.NewManager(m, storage.NewMemory(), clock.NewFake(testNow))
	t.Cleanup(mgr.Close)
	require.NoError(t, mgr.SignIn(context.Background(), email, seed.DemoPassword))
	return mgr
}

func TestLoginErrorsAreVerbatim(t *testing.T) {
	m := newMock(t)
	ctx := context.Background()

	res := m.Login(ctx, api.LoginRequest{Email: "test@gymflow.com", Password: "nope"})
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid email or password", res.Error)

	res = m.Login(ctx, api.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.False(t, res.Success)
	assert.Equal(t, "Email must be a valid email address", res.Error)

	res = m.Login(ctx, api.LoginRequest{Email: "test@gymflow.com", Password: seed.DemoPassword})
	require.True(t, res.Success)
	assert.NotEmpty(t, res.Data.AccessToken)
	assert.Positive(t, res.Data.ExpiresIn)

	me := m.CurrentUser(ctx, res.Data.AccessToken)
	require.True(t, me.Success)
	assert.Equal(t, "test@gymflow.com", me.Data.Email)

	me = m.CurrentUser(ctx, "garbage")
	assert.Equal(t, msgInvalidToken, me.Error)
}

func TestSessionManagerOverMock(t *testing.T) {
	m := newMock(t)
	mgr := signIn(t, m, "admin@gymflow.com")

	assert.Equal(t, session.Authenticated, mgr.State())
	assert.True(t, mgr.IsAdmin())
}

func TestBookingLastSpotIsVerbatim(t *testing.T) {
	m := newMock(t)
	ctx := context.Background()

	admin := signIn(t, m, "admin@gymflow.com")
	m.SetTokenSource(admin)
	created := m.CreateSession(ctx, api.CreateSessionRequest{ClassID: "class-2", Date: "2027-02-01", SpotsLeft: 1})
	require.True(t, created.Success, created.Error)

	m.SetTokenSource(signIn(t, m, "test@gymflow.com"))
	first := m.CreateBooking(ctx, api.BookingRequest{ClassSession: created.Data.ID})
	require.True(t, first.Success, first.Error)
	assert.Contains(t, first.Data.URL, "/booking/success?session_id=")

	second := m.CreateBooking(ctx, api.BookingRequest{ClassSession: created.Data.ID})
	assert.False(t, second.Success)
	assert.Equal(t, "No spots available", second.Error)
}

func TestCancelTwice(t *testing.T) {
	m := newMock(t)
	ctx := context.Background()
	m.SetTokenSource(signIn(t, m, "test@gymflow.com"))

	mine := m.UserBookings(ctx)
	require.True(t, mine.Success)
	var id string
	for _, b := range mine.Data {
		if b.HasStatus(api.StatusConfirmed) {
			id = b.ID
			break
		}
	}
	require.NotEmpty(t, id)

	require.True(t, m.CancelBooking(ctx, id).Success)

	again := m.CancelBooking(ctx, id)
	assert.False(t, again.Success)
	assert.Equal(t, "Booking is already cancelled", again.Error)

	missing := m.CancelBooking(ctx, "booking-999")
	assert.Equal(t, "Booking not found", missing.Error)
}

func TestAdminOperationsNeedAdminRole(t *testing.T) {
	m := newMock(t)
	ctx := context.Background()

	res := m.AllBookings(ctx)
	assert.Equal(t, msgNotAuthenticated, res.Error)

	m.SetTokenSource(signIn(t, m, "test@gymflow.com"))
	res = m.AllBookings(ctx)
	assert.Equal(t, msgForbidden, res.Error)
	assert.Equal(t, msgForbidden, m.DeleteClass(ctx, "class-1").Error)

	m.SetTokenSource(staticToken(""))
	assert.Equal(t, msgNotAuthenticated, m.DeleteSession(ctx, "session-1").Error)

	m.SetTokenSource(signIn(t, m, "admin@gymflow.com"))
	res = m.AllBookings(ctx)
	require.True(t, res.Success)
	assert.Len(t, res.Data, 18)
}

func TestClassLifecycle(t *testing.T) {
	m := newMock(t)
	ctx := context.Background()
	m.SetTokenSource(signIn(t, m, "admin@gymflow.com"))

	req := api.CreateClassRequest{
		Name:        "Lunch Spin",
		Instructor:  "Dana Ortiz",
		Duration:    "PT30M",
		TotalSpots:  12,
		Category:    "Cardio",
		Price:       18,
		ClassTime:   "12:15",
		DaysOfWeek:  []string{"TUESDAY", "THURSDAY"},
		WhatToBring: []string{"Water bottle"},
	}
	created := m.CreateClass(ctx, req)
	require.True(t, created.Success, created.Error)
	assert.ElementsMatch(t, req.DaysOfWeek, created.Data.DaysOfWeek)

	invalid := m.CreateClass(ctx, api.CreateClassRequest{Name: "No instructor"})
	assert.False(t, invalid.Success)
	assert.Equal(t, "Instructor is required", invalid.Error)

	req.Name = "Lunch Spin Express"
	updated := m.UpdateClass(ctx, api.UpdateClassRequest{ID: created.Data.ID, CreateClassRequest: req})
	require.True(t, updated.Success, updated.Error)
	assert.Equal(t, "Lunch Spin Express", updated.Data.Name)

	session := m.CreateSession(ctx, api.CreateSessionRequest{ClassID: created.Data.ID, Date: "2027-02-02", SpotsLeft: 12})
	require.True(t, session.Success, session.Error)

	require.True(t, m.DeleteClass(ctx, created.Data.ID).Success)

	sessions := m.SessionsByClass(ctx, created.Data.ID)
	assert.Equal(t, "Class not found", sessions.Error)

	gone := m.GetSession(ctx, session.Data.ID)
	assert.Equal(t, "Class session not found", gone.Error)
}
