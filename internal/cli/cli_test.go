package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vslbak/gymflow-web/internal/clock"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/seed"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

var cliNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

type harness struct {
	t     *testing.T
	state string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, state: filepath.Join(t.TempDir(), "state.json")}
}

// run executes one storefront invocation against a fresh mock backend that
// shares the persisted session with earlier invocations.
func (h *harness) run(input string, args ...string) (string, error) {
	var out bytes.Buffer
	app := New(Options{
		Out:   &out,
		In:    strings.NewReader(input),
		Clock: clock.NewFake(cliNow),
	})
	full := append([]string{"--mock", "--state", h.state}, args...)
	err := app.Execute(context.Background(), full)
	return out.String(), err
}

func (h *harness) login(email string) {
	out, err := h.run("", "login", "--email", email, "--password", seed.DemoPassword)
	require.NoError(h.t, err)
	require.Contains(h.t, out, email)
}

func TestClassesByCategory(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "classes", "--category", "yoga")
	require.NoError(t, err)
	assert.Contains(t, out, "Power Yoga Flow")
	assert.NotContains(t, out, "HIIT Cardio Blast")

	out, err = h.run("", "classes", "--category", "Aqua")
	require.NoError(t, err)
	assert.Contains(t, out, "Categories: Boxing, Cardio, Pilates, Strength, Yoga")
}

func TestClassPage(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "class", "class-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Power Yoga Flow with Sarah Mitchell")
	assert.Contains(t, out, "Dates: ")
	assert.Contains(t, out, "spots left")

	out, err = h.run("", "class", "class-1", "--date", "1999-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "No session on 1999-01-01.")

	_, err = h.run("", "class", "class-404")
	assert.Error(t, err)
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	_, err = h.run("", "login", "--email", "test@gymflow.com", "--password", "wrong")
	assert.EqualError(t, err, "login failed: Invalid email or password")

	h.login("test@gymflow.com")

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "John Doe <test@gymflow.com>")
	assert.Contains(t, out, "Role: USER")

	out, err = h.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestSignup(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "signup", "--username", "Jane Roe", "--email", "jane@example.com", "--password", "secret99")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Jane Roe <jane@example.com>.")

	_, err = h.run("", "signup", "--username", "Jane Roe", "--email", "test@gymflow.com", "--password", "secret99")
	assert.EqualError(t, err, "signup failed: Email already exists")
}

func TestBookRequiresLogin(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "book", "class-1")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Contains(t, out, "/login?redirect=%2Fclass%2Fclass-1")

	h.login("test@gymflow.com")
	out, err = h.run("", "book", "class-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked Power Yoga Flow")
	assert.Contains(t, out, "Continue at: http://localhost:5173/booking/success?session_id=booking-019")
}

func TestDashboardAndCancel(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "dashboard")
	assert.ErrorIs(t, err, ErrNotSignedIn)

	h.login("test@gymflow.com")
	out, err := h.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookings: 5")
	assert.Contains(t, out, "Cancelled (1)")
	assert.Contains(t, out, "booking-005")

	out, err = h.run("n\n", "cancel", "booking-001")
	assert.ErrorIs(t, err, ErrAborted)
	assert.Contains(t, out, "Cancel booking booking-001? [y/N]")

	out, err = h.run("y\n", "cancel", "booking-001")
	require.NoError(t, err)
	assert.Contains(t, out, "Booking booking-001 cancelled.")

	_, err = h.run("", "cancel", "booking-005", "--yes")
	assert.Error(t, err, "already cancelled bookings are not sent again")

	_, err = h.run("", "cancel", "booking-006", "--yes")
	assert.Error(t, err, "other users' bookings are not on the dashboard")
}

func TestAdminCommands(t *testing.T) {
	h := newHarness(t)

	h.login("test@gymflow.com")
	_, err := h.run("", "admin", "stats")
	assert.ErrorIs(t, err, ErrNotAdmin)
	_, err = h.run("", "admin", "classes", "list")
	assert.ErrorIs(t, err, ErrNotAdmin)

	h.login("admin@gymflow.com")

	out, err := h.run("", "admin", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookings: 18")
	assert.Contains(t, out, "Cancelled: 2")
	assert.Contains(t, out, "Popular classes")

	out, err = h.run("", "admin", "classes", "create",
		"--name", "Evening Mobility", "--instructor", "Nina Park", "--duration", "45",
		"--days", "MONDAY,WEDNESDAY", "--bring", "Yoga mat")
	require.NoError(t, err)
	assert.Contains(t, out, "Created class")
	assert.Contains(t, out, "(Evening Mobility)")

	_, err = h.run("", "admin", "classes", "create", "--name", "No instructor")
	assert.ErrorContains(t, err, "Instructor is required")

	out, err = h.run("", "admin", "classes", "update", "class-2", "--price", "19.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated class class-2 (HIIT Cardio Blast).")

	_, err = h.run("n\n", "admin", "classes", "delete", "class-2")
	assert.ErrorIs(t, err, ErrAborted)

	out, err = h.run("", "admin", "classes", "delete", "class-2", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted class class-2.")

	out, err = h.run("", "admin", "sessions", "list", "--class", "class-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Power Yoga Flow")
	assert.NotContains(t, out, "HIIT Cardio Blast")

	out, err = h.run("", "admin", "sessions", "create", "--class", "class-1", "--date", "2027-01-15", "--time", "18:30", "--spots", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "2027-01-15 18:30, 10 spots left.")

	_, err = h.run("", "admin", "sessions", "create", "--class", "class-1", "--date", "2027-01-15", "--spots", "99")
	assert.Error(t, err)

	out, err = h.run("", "admin", "sessions", "delete", "session-1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted session session-1.")
}
