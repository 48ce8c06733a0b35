package session

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/clock"
	"github.com/vslbak/gymflow-web/internal/storage"
)

type MockAuthAPI struct{ mock.Mock }

func (m *MockAuthAPI) Login(ctx context.Context, req api.LoginRequest) client.Result[api.LoginResponse] {
	return m.Called(ctx, req).Get(0).(client.Result[api.LoginResponse])
}

func (m *MockAuthAPI) Signup(ctx context.Context, req api.SignupRequest) client.Result[api.LoginResponse] {
	return m.Called(ctx, req).Get(0).(client.Result[api.LoginResponse])
}

func (m *MockAuthAPI) RefreshToken(ctx context.Context, refreshToken string) client.Result[api.LoginResponse] {
	return m.Called(ctx, refreshToken).Get(0).(client.Result[api.LoginResponse])
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context, token string) client.Result[api.User] {
	return m.Called(ctx, token).Get(0).(client.Result[api.User])
}

var (
	start    = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	testUser = api.User{ID: "1", Email: "test@gymflow.com", Username: "John Doe", Role: api.RoleUser}
)

func newManager(t *testing.T) (*Manager, *MockAuthAPI, *storage.Memory, *clock.Fake) {
	t.Helper()
	authAPI := new(MockAuthAPI)
	store := storage.NewMemory()
	clk := clock.NewFake(start)
	m := NewManager(authAPI, store, clk)
	t.Cleanup(m.Close)
	return m, authAPI, store, clk
}

func stored(t *testing.T, store storage.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestRefreshDelay(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      time.Duration
	}{
		{"long lived token refreshes a minute early", 15 * time.Minute, 14 * time.Minute},
		{"just over a minute", 61 * time.Second, time.Second},
		{"exactly a minute uses 80 percent", time.Minute, 48 * time.Second},
		{"short token uses 80 percent", 30 * time.Second, 24 * time.Second},
		{"tiny remainder is floored", 100 * time.Millisecond, MinRefreshDelay},
		{"expired token is floored", -time.Minute, MinRefreshDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RefreshDelay(start.Add(tt.remaining), start))
		})
	}
}

func TestLogin_PersistsAndSchedulesRefresh(t *testing.T) {
	m, authAPI, store, clk := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, "access-1").Return(client.OK(testUser))

	var transitions []State
	m.OnChange(func(s State) { transitions = append(transitions, s) })

	m.Login(context.Background(), api.LoginResponse{AccessToken: "access-1", ExpiresIn: 900, RefreshToken: "refresh-1"})

	assert.Equal(t, Authenticated, m.State())
	assert.True(t, m.IsAuthenticated())
	assert.False(t, m.IsAdmin())
	require.NotNil(t, m.User())
	assert.Equal(t, "John Doe", m.User().Username)
	assert.Equal(t, []State{Loading, Authenticated}, transitions)

	token, _ := stored(t, store, storage.KeyToken)
	assert.Equal(t, "access-1", token)
	expiry, _ := stored(t, store, storage.KeyTokenExpiry)
	assert.Equal(t, strconv.FormatInt(start.Add(900*time.Second).UnixMilli(), 10), expiry)
	refresh, _ := stored(t, store, storage.KeyRefreshToken)
	assert.Equal(t, "refresh-1", refresh)

	deadline, ok := clk.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, start.Add(840*time.Second), deadline)
	assert.Equal(t, 1, clk.Pending())
}

func TestLogin_ProfileFailureStillAuthenticated(t *testing.T) {
	m, authAPI, _, _ := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, "access-1").Return(client.Fail[api.User]("500 Internal Server Error"))

	m.Login(context.Background(), api.LoginResponse{AccessToken: "access-1", ExpiresIn: 900})

	assert.Equal(t, Authenticated, m.State())
	assert.Nil(t, m.User())
	assert.Equal(t, "access-1", m.Token())
}

func TestLogin_ReplacesPendingTimer(t *testing.T) {
	m, authAPI, _, clk := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, mock.Anything).Return(client.OK(testUser))

	m.Login(context.Background(), api.LoginResponse{AccessToken: "a", ExpiresIn: 900})
	m.Login(context.Background(), api.LoginResponse{AccessToken: "b", ExpiresIn: 30})

	assert.Equal(t, 1, clk.Pending())
	deadline, _ := clk.NextDeadline()
	assert.Equal(t, start.Add(24*time.Second), deadline)
}

func TestTimerRefreshesBeforeExpiry(t *testing.T) {
	m, authAPI, store, clk := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, "access-1").Return(client.OK(testUser))
	authAPI.On("RefreshToken", mock.Anything, "refresh-1").
		Return(client.OK(api.LoginResponse{AccessToken: "access-2", ExpiresIn: 900})).Once()

	m.Login(context.Background(), api.LoginResponse{AccessToken: "access-1", ExpiresIn: 900, RefreshToken: "refresh-1"})

	clk.Advance(839 * time.Second)
	authAPI.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)

	clk.Advance(time.Second)
	authAPI.AssertNumberOfCalls(t, "RefreshToken", 1)

	assert.Equal(t, "access-2", m.Token())
	assert.Equal(t, Authenticated, m.State())
	require.NotNil(t, m.User(), "refresh keeps the loaded profile")

	token, _ := stored(t, store, storage.KeyToken)
	assert.Equal(t, "access-2", token)
	refresh, _ := stored(t, store, storage.KeyRefreshToken)
	assert.Equal(t, "refresh-1", refresh, "refresh token kept when none is returned")

	deadline, ok := clk.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, start.Add(840*time.Second+840*time.Second), deadline)
}

func TestRefreshFailureLogsOut(t *testing.T) {
	m, authAPI, store, clk := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, "access-1").Return(client.OK(testUser))
	authAPI.On("RefreshToken", mock.Anything, "refresh-1").Return(client.Fail[api.LoginResponse]("401 Unauthorized"))

	m.Login(context.Background(), api.LoginResponse{AccessToken: "access-1", ExpiresIn: 120, RefreshToken: "refresh-1"})
	clk.Advance(time.Minute)

	assert.Equal(t, Unauthenticated, m.State())
	assert.Empty(t, m.Token())
	assert.Nil(t, m.User())
	assert.Equal(t, 0, clk.Pending())

	_, ok := stored(t, store, storage.KeyToken)
	assert.False(t, ok)
	_, ok = stored(t, store, storage.KeyRefreshToken)
	assert.False(t, ok)
}

func TestRefresh_ReturnsError(t *testing.T) {
	m, authAPI, _, _ := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, "access-1").Return(client.OK(testUser))
	authAPI.On("RefreshToken", mock.Anything, "").Return(client.Fail[api.LoginResponse]("dial tcp: connection refused"))

	m.Login(context.Background(), api.LoginResponse{AccessToken: "access-1", ExpiresIn: 900})
	err := m.Refresh(context.Background())

	require.ErrorIs(t, err, ErrRefreshFailed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, Unauthenticated, m.State())
}

func TestLogoutCancelsTimer(t *testing.T) {
	m, authAPI, store, clk := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, "access-1").Return(client.OK(testUser))

	m.Login(context.Background(), api.LoginResponse{AccessToken: "access-1", ExpiresIn: 900, RefreshToken: "refresh-1"})
	m.Logout(context.Background())

	assert.Equal(t, 0, clk.Pending())
	clk.Advance(time.Hour)
	authAPI.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
	assert.Equal(t, Unauthenticated, m.State())

	_, ok := stored(t, store, storage.KeyTokenExpiry)
	assert.False(t, ok)
}

func TestCloseStopsTimer(t *testing.T) {
	m, authAPI, _, clk := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, "access-1").Return(client.OK(testUser))

	m.Login(context.Background(), api.LoginResponse{AccessToken: "access-1", ExpiresIn: 900})
	m.Close()

	assert.Equal(t, 0, clk.Pending())
	clk.Advance(time.Hour)
	authAPI.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
}

func TestCloseBeforeTimerRefreshRuns(t *testing.T) {
	m, authAPI, _, clk := newManager(t)
	authAPI.On("CurrentUser", mock.Anything, "access-1").Return(client.OK(testUser))

	m.Login(context.Background(), api.LoginResponse{AccessToken: "access-1", ExpiresIn: 900, RefreshToken: "refresh-1"})
	m.mu.RLock()
	armed := m.generation
	m.mu.RUnlock()

	// the timer has passed its generation check when Close runs
	m.Close()
	require.NoError(t, m.refreshAt(context.Background(), armed))

	authAPI.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
	assert.Equal(t, 0, clk.Pending())
	assert.Equal(t, "access-1", m.Token())
}

func TestCloseDuringRefreshDoesNotRearm(t *testing.T) {
	authAPI := &gatedRefresher{gate: make(chan struct{})}
	clk := clock.NewFake(start)
	m := NewManager(authAPI, storage.NewMemory(), clk)

	done := make(chan error, 1)
	go func() { done <- m.Refresh(context.Background()) }()

	require.Eventually(t, func() bool { return authAPI.calls.Load() == 1 }, time.Second, time.Millisecond)
	m.Close()
	close(authAPI.gate)
	require.NoError(t, <-done)

	assert.Empty(t, m.Token())
	assert.Equal(t, 0, clk.Pending())

	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, int32(1), authAPI.calls.Load(), "a closed manager never refreshes")
}

func TestSignIn_WrongPassword(t *testing.T) {
	m, authAPI, store, _ := newManager(t)
	req := api.LoginRequest{Email: "test@gymflow.com", Password: "nope"}
	authAPI.On("Login", mock.Anything, req).Return(client.Fail[api.LoginResponse]("401 Unauthorized"))

	err := m.SignIn(context.Background(), req.Email, req.Password)

	require.EqualError(t, err, "401 Unauthorized")
	assert.Equal(t, Unauthenticated, m.State())
	_, ok := stored(t, store, storage.KeyToken)
	assert.False(t, ok)
}

func TestSignUp_LogsIn(t *testing.T) {
	m, authAPI, _, _ := newManager(t)
	req := api.SignupRequest{Username: "Jane", Email: "jane@gymflow.com", Password: "secret1"}
	authAPI.On("Signup", mock.Anything, req).Return(client.OK(api.LoginResponse{AccessToken: "t", ExpiresIn: 900}))
	authAPI.On("CurrentUser", mock.Anything, "t").Return(client.OK(api.User{ID: "9", Username: "Jane", Role: "user"}))

	require.NoError(t, m.SignUp(context.Background(), req))

	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "9", m.User().ID)
}

func TestSignIn_Admin(t *testing.T) {
	m, authAPI, _, _ := newManager(t)
	authAPI.On("Login", mock.Anything, mock.Anything).Return(client.OK(api.LoginResponse{AccessToken: "t", ExpiresIn: 900}))
	authAPI.On("CurrentUser", mock.Anything, "t").Return(client.OK(api.User{ID: "2", Role: "admin"}))

	require.NoError(t, m.SignIn(context.Background(), "admin@gymflow.com", "password123"))

	assert.True(t, m.IsAdmin())
}

func seed(t *testing.T, store storage.Store, token string, expiry time.Time, refresh string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.KeyToken, token))
	require.NoError(t, store.Set(ctx, storage.KeyTokenExpiry, strconv.FormatInt(expiry.UnixMilli(), 10)))
	if refresh != "" {
		require.NoError(t, store.Set(ctx, storage.KeyRefreshToken, refresh))
	}
}

func TestStart_NothingPersisted(t *testing.T) {
	m, authAPI, _, _ := newManager(t)

	m.Start(context.Background())

	assert.Equal(t, Unauthenticated, m.State())
	authAPI.AssertNotCalled(t, "CurrentUser", mock.Anything, mock.Anything)
}

func TestStart_TokenWithoutExpiry(t *testing.T) {
	m, _, store, _ := newManager(t)
	require.NoError(t, store.Set(context.Background(), storage.KeyToken, "orphan"))

	m.Start(context.Background())

	assert.Equal(t, Unauthenticated, m.State())
}

func TestStart_ValidToken(t *testing.T) {
	m, authAPI, store, clk := newManager(t)
	seed(t, store, "stored", start.Add(10*time.Minute), "")
	authAPI.On("CurrentUser", mock.Anything, "stored").Return(client.OK(testUser))

	m.Start(context.Background())

	assert.Equal(t, Authenticated, m.State())
	assert.Equal(t, "stored", m.Token())
	deadline, ok := clk.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, start.Add(9*time.Minute), deadline)
	authAPI.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
}

func TestStart_ExpiredTokenRefreshes(t *testing.T) {
	m, authAPI, store, _ := newManager(t)
	seed(t, store, "old", start.Add(-time.Minute), "refresh-1")
	authAPI.On("RefreshToken", mock.Anything, "refresh-1").
		Return(client.OK(api.LoginResponse{AccessToken: "fresh", ExpiresIn: 900, RefreshToken: "refresh-2"}))
	authAPI.On("CurrentUser", mock.Anything, "fresh").Return(client.OK(testUser))

	m.Start(context.Background())

	assert.Equal(t, Authenticated, m.State())
	assert.Equal(t, "fresh", m.Token())
	require.NotNil(t, m.User())
	refresh, _ := stored(t, store, storage.KeyRefreshToken)
	assert.Equal(t, "refresh-2", refresh)
	authAPI.AssertNotCalled(t, "CurrentUser", mock.Anything, "old")
}

func TestStart_ExpiredTokenRefreshFails(t *testing.T) {
	m, authAPI, store, _ := newManager(t)
	seed(t, store, "old", start.Add(-time.Minute), "refresh-1")
	authAPI.On("RefreshToken", mock.Anything, "refresh-1").Return(client.Fail[api.LoginResponse]("401 Unauthorized"))

	m.Start(context.Background())

	assert.Equal(t, Unauthenticated, m.State())
	_, ok := stored(t, store, storage.KeyToken)
	assert.False(t, ok)
}

func TestStart_RejectedTokenFallsBackToRefresh(t *testing.T) {
	m, authAPI, store, _ := newManager(t)
	seed(t, store, "revoked", start.Add(10*time.Minute), "refresh-1")
	authAPI.On("CurrentUser", mock.Anything, "revoked").Return(client.Fail[api.User]("401 Unauthorized"))
	authAPI.On("RefreshToken", mock.Anything, "refresh-1").
		Return(client.OK(api.LoginResponse{AccessToken: "fresh", ExpiresIn: 900}))
	authAPI.On("CurrentUser", mock.Anything, "fresh").Return(client.Fail[api.User]("503 Service Unavailable"))

	m.Start(context.Background())

	assert.Equal(t, Authenticated, m.State())
	assert.Equal(t, "fresh", m.Token())
	assert.Nil(t, m.User())
}

func TestStart_RejectedTokenAndRefreshFails(t *testing.T) {
	m, authAPI, store, _ := newManager(t)
	seed(t, store, "revoked", start.Add(10*time.Minute), "")
	authAPI.On("CurrentUser", mock.Anything, "revoked").Return(client.Fail[api.User]("401 Unauthorized"))
	authAPI.On("RefreshToken", mock.Anything, "").Return(client.Fail[api.LoginResponse]("401 Unauthorized"))

	m.Start(context.Background())

	assert.Equal(t, Unauthenticated, m.State())
}

type gatedRefresher struct {
	MockAuthAPI
	calls atomic.Int32
	gate  chan struct{}
}

func (g *gatedRefresher) RefreshToken(ctx context.Context, refreshToken string) client.Result[api.LoginResponse] {
	g.calls.Add(1)
	<-g.gate
	return client.OK(api.LoginResponse{AccessToken: "shared", ExpiresIn: 900})
}

func TestConcurrentRefreshesShareOneCall(t *testing.T) {
	authAPI := &gatedRefresher{gate: make(chan struct{})}
	m := NewManager(authAPI, storage.NewMemory(), clock.NewFake(start))
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Refresh(context.Background()))
		}()
	}

	require.Eventually(t, func() bool { return authAPI.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(authAPI.gate)
	wg.Wait()

	assert.Equal(t, int32(1), authAPI.calls.Load())
	assert.Equal(t, "shared", m.Token())
}
