// Package session owns the storefront's authentication state: the access
// token, its expiry, the optional refresh token and the profile of the
// signed-in user. It persists that state through a storage.Store and keeps
// the token fresh with a single-shot timer re-armed on every token change.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/clock"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/metrics"
	"github.com/vslbak/gymflow-web/internal/storage"
)

type State int

const (
	Unauthenticated State = iota
	Loading
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "LOADING"
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return "UNAUTHENTICATED"
	}
}

const (
	RefreshLeadTime = 60 * time.Second
	MinRefreshDelay = 250 * time.Millisecond
)

var (
	ErrRefreshFailed = errors.New("token refresh failed")
	ErrNoAccessToken = errors.New("response carried no access token")
)

// AuthAPI is the subset of client.API the manager talks to.
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) client.Result[api.LoginResponse]
	Signup(ctx context.Context, req api.SignupRequest) client.Result[api.LoginResponse]
	RefreshToken(ctx context.Context, refreshToken string) client.Result[api.LoginResponse]
	CurrentUser(ctx context.Context, token string) client.Result[api.User]
}

// RefreshDelay returns how long to wait before refreshing a token expiring
// at expiry: one minute ahead of expiry, or at 80% of the remaining lifetime
// when less than a minute is left.
func RefreshDelay(expiry, now time.Time) time.Duration {
	remaining := expiry.Sub(now)
	if remaining > RefreshLeadTime {
		return remaining - RefreshLeadTime
	}
	delay := time.Duration(float64(remaining) * 0.8)
	if delay < MinRefreshDelay {
		return MinRefreshDelay
	}
	return delay
}

type Manager struct {
	api   AuthAPI
	store storage.Store
	clock clock.Clock

	mu           sync.RWMutex
	state        State
	token        string
	expiry       time.Time
	refreshToken string
	user         *api.User
	timer        clock.Timer
	generation   uint64
	closed       bool
	listeners    []func(State)

	refreshes singleflight.Group
}

func NewManager(authAPI AuthAPI, store storage.Store, clk clock.Clock) *Manager {
	if authAPI == nil || store == nil {
		panic("session: nil dependency")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Manager{api: authAPI, store: store, clock: clk}
}

// Start rehydrates the persisted session. It never fails; the outcome is
// observable through State.
func (m *Manager) Start(ctx context.Context) {
	m.setState(Loading)

	token, hasToken := m.load(ctx, storage.KeyToken)
	rawExpiry, hasExpiry := m.load(ctx, storage.KeyTokenExpiry)
	refreshToken, _ := m.load(ctx, storage.KeyRefreshToken)

	if !hasToken || !hasExpiry || token == "" {
		m.setState(Unauthenticated)
		return
	}
	millis, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		logger.Warn("discarding persisted session with malformed expiry", "value", rawExpiry)
		m.Logout(ctx)
		return
	}
	expiry := time.UnixMilli(millis)

	m.mu.Lock()
	m.token = token
	m.expiry = expiry
	m.refreshToken = refreshToken
	m.generation++
	m.mu.Unlock()

	if !m.clock.Now().Before(expiry) {
		if err := m.Refresh(ctx); err != nil {
			return
		}
		m.fetchProfile(ctx)
		return
	}

	res := m.api.CurrentUser(ctx, token)
	if res.Success {
		user := res.Data
		m.mu.Lock()
		m.user = &user
		m.armLocked()
		m.mu.Unlock()
		m.setState(Authenticated)
		return
	}

	logger.Debug("stored token rejected, attempting refresh", "error", res.Error)
	if err := m.Refresh(ctx); err != nil {
		return
	}
	m.fetchProfile(ctx)
}

// Login installs the tokens of a successful login or signup response and
// loads the user's profile. A failed profile fetch still leaves the session
// authenticated, with no user.
func (m *Manager) Login(ctx context.Context, resp api.LoginResponse) {
	m.setState(Loading)
	m.install(ctx, resp, true)
	m.fetchProfile(ctx)
	m.setState(Authenticated)
}

// SignIn authenticates with credentials. On failure the state is left as it
// was and the envelope error is returned.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	res := m.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if !res.Success {
		return res.Err()
	}
	if res.Data.AccessToken == "" {
		return ErrNoAccessToken
	}
	m.Login(ctx, res.Data)
	return nil
}

func (m *Manager) SignUp(ctx context.Context, req api.SignupRequest) error {
	res := m.api.Signup(ctx, req)
	if !res.Success {
		return res.Err()
	}
	if res.Data.AccessToken == "" {
		return ErrNoAccessToken
	}
	m.Login(ctx, res.Data)
	return nil
}

// Logout clears the session, its persisted keys and any pending refresh.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.clearLocked()
	m.mu.Unlock()

	if err := m.store.Delete(ctx, storage.KeyToken, storage.KeyTokenExpiry, storage.KeyRefreshToken); err != nil {
		logger.Warn("failed to clear persisted session", "error", err)
	}
	m.setState(Unauthenticated)
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// calls share one request. Any failure logs the session out; the error is
// returned for callers that want it.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.RLock()
	gen := m.generation
	m.mu.RUnlock()
	return m.refreshAt(ctx, gen)
}

// refreshAt refreshes the session identified by gen. It does nothing once
// that session has been replaced, logged out or closed.
func (m *Manager) refreshAt(ctx context.Context, gen uint64) error {
	_, err, _ := m.refreshes.Do("refresh", func() (interface{}, error) {
		return nil, m.refresh(ctx, gen)
	})
	return err
}

func (m *Manager) refresh(ctx context.Context, gen uint64) error {
	m.mu.RLock()
	refreshToken := m.refreshToken
	current := gen == m.generation && !m.closed
	m.mu.RUnlock()
	if !current {
		logger.Debug("skipping refresh for superseded session")
		return nil
	}

	res := m.api.RefreshToken(ctx, refreshToken)

	m.mu.RLock()
	stale := gen != m.generation || m.closed
	m.mu.RUnlock()
	if stale {
		logger.Debug("dropping refresh result for superseded session")
		return nil
	}

	if !res.Success || res.Data.AccessToken == "" {
		metrics.RecordTokenRefresh(false)
		logger.Warn("token refresh failed, logging out", "error", res.Error)
		m.Logout(ctx)
		if res.Error == "" {
			return ErrNoAccessToken
		}
		return fmt.Errorf("%w: %s", ErrRefreshFailed, res.Error)
	}

	metrics.RecordTokenRefresh(true)
	m.install(ctx, res.Data, false)
	m.setState(Authenticated)
	return nil
}

// Close stops the refresh timer for good. Timers that already fired and
// refreshes still in flight are ignored.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.closed = true
	m.generation++
}

// Token implements client.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) Expiry() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expiry
}

func (m *Manager) User() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == Authenticated && m.token != ""
}

func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == Authenticated && m.user.IsAdmin()
}

// OnChange registers fn to be called after every state transition.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) install(ctx context.Context, resp api.LoginResponse, resetUser bool) {
	expiry := m.clock.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)

	m.mu.Lock()
	m.token = resp.AccessToken
	m.expiry = expiry
	if resp.RefreshToken != "" {
		m.refreshToken = resp.RefreshToken
	} else if resetUser {
		m.refreshToken = ""
	}
	if resetUser {
		m.user = nil
	}
	m.generation++
	m.armLocked()
	refreshToken := m.refreshToken
	m.mu.Unlock()

	m.persist(ctx, storage.KeyToken, resp.AccessToken)
	m.persist(ctx, storage.KeyTokenExpiry, strconv.FormatInt(expiry.UnixMilli(), 10))
	if refreshToken != "" {
		m.persist(ctx, storage.KeyRefreshToken, refreshToken)
	} else if err := m.store.Delete(ctx, storage.KeyRefreshToken); err != nil {
		logger.Warn("failed to clear refresh token", "error", err)
	}
}

func (m *Manager) fetchProfile(ctx context.Context) {
	m.mu.RLock()
	token := m.token
	gen := m.generation
	m.mu.RUnlock()
	if token == "" {
		return
	}

	res := m.api.CurrentUser(ctx, token)
	if !res.Success {
		logger.Warn("failed to load user profile", "error", res.Error)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return
	}
	user := res.Data
	m.user = &user
}

// armLocked replaces the refresh timer with one for the current token.
func (m *Manager) armLocked() {
	m.stopTimerLocked()
	if m.closed || m.token == "" || m.expiry.IsZero() {
		return
	}
	gen := m.generation
	delay := RefreshDelay(m.expiry, m.clock.Now())
	m.timer = m.clock.AfterFunc(delay, func() { m.fire(gen) })
	logger.Debug("token refresh scheduled", "in", delay.String())
}

func (m *Manager) fire(gen uint64) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.mu.Unlock()

	_ = m.refreshAt(context.Background(), gen)
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) clearLocked() {
	m.stopTimerLocked()
	m.token = ""
	m.expiry = time.Time{}
	m.refreshToken = ""
	m.user = nil
	m.generation++
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	listeners := append([]func(State){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

func (m *Manager) load(ctx context.Context, key string) (string, bool) {
	v, ok, err := m.store.Get(ctx, key)
	if err != nil {
		logger.Warn("failed to read persisted session", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (m *Manager) persist(ctx context.Context, key, value string) {
	if err := m.store.Set(ctx, key, value); err != nil {
		logger.Warn("failed to persist session", "key", key, "error", err)
	}
}

var _ client.TokenSource = (*Manager)(nil)
