package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
)

type MockSessionAPI struct{ mock.Mock }

func (m *MockSessionAPI) SessionsByClass(ctx context.Context, classID string) client.Result[[]api.ClassSession] {
	return m.Called(ctx, classID).Get(0).(client.Result[[]api.ClassSession])
}

func (m *MockSessionAPI) CreateBooking(ctx context.Context, req api.BookingRequest) client.Result[api.BookingResponse] {
	return m.Called(ctx, req).Get(0).(client.Result[api.BookingResponse])
}

type stubCatalog map[string]api.GymClass

func (s stubCatalog) Load(context.Context) error { return nil }

func (s stubCatalog) ByID(id string) (api.GymClass, bool) {
	c, ok := s[id]
	return c, ok
}

type stubAuth bool

func (a stubAuth) IsAuthenticated() bool { return bool(a) }

var yoga = api.GymClass{ID: "class-1", Name: "Power Yoga Flow", TotalSpots: 20, Price: 25}

func sessions() []api.ClassSession {
	return []api.ClassSession{
		{ID: "session-3", ClassID: "class-1", Date: "2025-03-14", SpotsLeft: 0},
		{ID: "session-1", ClassID: "class-1", Date: "2025-03-12", SpotsLeft: 5},
		{ID: "session-2", ClassID: "class-1", Date: "2025-03-13", SpotsLeft: 12},
	}
}

func openPage(t *testing.T, authenticated bool) (*ClassPage, *MockSessionAPI) {
	t.Helper()
	m := new(MockSessionAPI)
	m.On("SessionsByClass", mock.Anything, "class-1").Return(client.OK(sessions())).Once()
	p, err := Open(context.Background(), "class-1", Deps{
		API:     m,
		Catalog: stubCatalog{"class-1": yoga},
		Auth:    stubAuth(authenticated),
	})
	require.NoError(t, err)
	return p, m
}

func TestOpen_SelectsEarliestDate(t *testing.T) {
	p, _ := openPage(t, true)

	assert.Equal(t, []string{"2025-03-12", "2025-03-13", "2025-03-14"}, p.AvailableDates())
	assert.Equal(t, "2025-03-12", p.SelectedDate())
	require.NotNil(t, p.Session())
	assert.Equal(t, "session-1", p.Session().ID)
	assert.NoError(t, p.LoadError())

	a, ok := p.Availability()
	require.True(t, ok)
	assert.Equal(t, Availability{SpotsLeft: 5, TotalSpots: 20, Low: true}, a)
	assert.True(t, p.CanBook())
}

func TestOpen_Errors(t *testing.T) {
	deps := Deps{API: new(MockSessionAPI), Catalog: stubCatalog{}, Auth: stubAuth(true)}

	_, err := Open(context.Background(), "", deps)
	assert.ErrorIs(t, err, ErrMissingClassID)

	_, err = Open(context.Background(), "class-404", deps)
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestOpen_SessionFetchFailure(t *testing.T) {
	m := new(MockSessionAPI)
	m.On("SessionsByClass", mock.Anything, "class-1").Return(client.Fail[[]api.ClassSession]("500 Internal Server Error"))

	p, err := Open(context.Background(), "class-1", Deps{API: m, Catalog: stubCatalog{"class-1": yoga}, Auth: stubAuth(true)})

	require.NoError(t, err)
	assert.Empty(t, p.AvailableDates())
	assert.Nil(t, p.Session())
	assert.EqualError(t, p.LoadError(), "500 Internal Server Error")
	assert.False(t, p.CanBook())
}

func TestSelect(t *testing.T) {
	p, _ := openPage(t, true)

	p.Select("2025-03-14")
	a, _ := p.Availability()
	assert.True(t, a.FullyBooked)
	assert.False(t, p.CanBook())

	p.Select("2025-04-01")
	assert.Nil(t, p.Session())
	_, ok := p.Availability()
	assert.False(t, ok)
}

func TestBook_Success(t *testing.T) {
	p, m := openPage(t, true)
	req := api.BookingRequest{ClassSession: "session-1", ClassName: "Power Yoga Flow", Amount: 25}
	m.On("CreateBooking", mock.Anything, req).
		Return(client.OK(api.BookingResponse{URL: "/booking/success?session_id=booking-019"}))

	out, err := p.Book(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/booking/success?session_id=booking-019", out.RedirectURL)
	assert.Equal(t, 5, p.Session().SpotsLeft, "local spots are not decremented")
}

func TestBook_RequiresLogin(t *testing.T) {
	p, m := openPage(t, false)

	_, err := p.Book(context.Background())

	var loginErr *LoginRequiredError
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, "/login?redirect=%2Fclass%2Fclass-1", loginErr.RedirectPath)
	m.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBook_Preconditions(t *testing.T) {
	p, m := openPage(t, true)

	p.Select("2025-04-01")
	_, err := p.Book(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	p.Select("2025-03-14")
	_, err = p.Book(context.Background())
	assert.ErrorIs(t, err, ErrFullyBooked)
	assert.EqualError(t, err, "No spots available")

	m.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBook_BackendRejects(t *testing.T) {
	p, m := openPage(t, true)
	m.On("CreateBooking", mock.Anything, mock.Anything).Return(client.Fail[api.BookingResponse]("409 Conflict"))

	_, err := p.Book(context.Background())

	var bookingErr *BookingError
	require.True(t, errors.As(err, &bookingErr))
	assert.Equal(t, "409 Conflict", bookingErr.Message)
	assert.Equal(t, 5, p.Session().SpotsLeft)
}

func TestBook_RejectsDoubleSubmit(t *testing.T) {
	p, m := openPage(t, true)
	entered := make(chan struct{})
	release := make(chan struct{})
	m.On("CreateBooking", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(client.OK(api.BookingResponse{URL: "/booking/success?session_id=b"})).Once()

	done := make(chan error, 1)
	go func() {
		_, err := p.Book(context.Background())
		done <- err
	}()
	<-entered

	assert.False(t, p.CanBook())
	_, err := p.Book(context.Background())
	assert.ErrorIs(t, err, ErrBookingInProgress)

	close(release)
	require.NoError(t, <-done)
	m.AssertNumberOfCalls(t, "CreateBooking", 1)
	assert.True(t, p.CanBook())
}

func TestReload_KeepsSelectionAndShowsBackendSpots(t *testing.T) {
	p, m := openPage(t, true)
	p.Select("2025-03-13")

	updated := sessions()
	updated[2].SpotsLeft = 11
	m.On("SessionsByClass", mock.Anything, "class-1").Return(client.OK(updated)).Once()

	p.Reload(context.Background())

	assert.Equal(t, "2025-03-13", p.SelectedDate())
	assert.Equal(t, 11, p.Session().SpotsLeft)
}
