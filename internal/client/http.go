package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/metrics"
)

// HTTPClient implements API over HTTP/JSON.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	tokens TokenSource
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// no Timeout: calls are bounded only by the caller's context
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource wires the session manager in after construction; the
// manager itself depends on the client.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

type request struct {
	op     string
	method string
	path   string
	body   interface{}
	token  string
}

func call[T any](ctx context.Context, c *HTTPClient, req request) Result[T] {
	start := time.Now()
	res := do[T](ctx, c, req)
	elapsed := time.Since(start)

	metrics.RecordClientCall(req.op, res.Success, elapsed.Seconds())
	if res.Success {
		logger.Debug("api call", "op", req.op, "method", req.method, "path", req.path, "latency_ms", elapsed.Milliseconds())
	} else {
		logger.Debug("api call failed", "op", req.op, "method", req.method, "path", req.path, "error", res.Error)
	}
	return res
}

func do[T any](ctx context.Context, c *HTTPClient, req request) Result[T] {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return Fail[T](err.Error())
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return Fail[T](err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	token := req.token
	if token == "" {
		token = c.token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Fail[T](err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Fail[T](fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail[T](err.Error())
	}

	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return OK(out)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Fail[T](err.Error())
	}
	return OK(out)
}

func escape(id string) string {
	return url.PathEscape(id)
}

func (c *HTTPClient) ListClasses(ctx context.Context) Result[[]api.GymClass] {
	r := call[[]wireClass](ctx, c, request{op: "list_classes", method: http.MethodGet, path: "/classes"})
	return mapResult(r, normalizeClasses)
}

func (c *HTTPClient) ListSessions(ctx context.Context) Result[[]api.ClassSession] {
	r := call[[]wireSession](ctx, c, request{op: "list_sessions", method: http.MethodGet, path: "/sessions"})
	return mapResult(r, normalizeSessions)
}

func (c *HTTPClient) GetSession(ctx context.Context, id string) Result[api.ClassSession] {
	r := call[wireSession](ctx, c, request{op: "get_session", method: http.MethodGet, path: "/sessions/" + escape(id)})
	return mapResult(r, wireSession.normalize)
}

func (c *HTTPClient) SessionsByClass(ctx context.Context, classID string) Result[[]api.ClassSession] {
	r := call[[]wireSession](ctx, c, request{
		op:     "sessions_by_class",
		method: http.MethodGet,
		path:   "/classes/" + escape(classID) + "/sessions",
	})
	return mapResult(r, func(ws []wireSession) []api.ClassSession {
		sessions := normalizeSessions(ws)
		for i := range sessions {
			if sessions[i].ClassID == "" {
				sessions[i].ClassID = classID
			}
		}
		return sessions
	})
}

func (c *HTTPClient) Login(ctx context.Context, req api.LoginRequest) Result[api.LoginResponse] {
	return call[api.LoginResponse](ctx, c, request{op: "login", method: http.MethodPost, path: "/auth/login", body: req})
}

func (c *HTTPClient) Signup(ctx context.Context, req api.SignupRequest) Result[api.LoginResponse] {
	return call[api.LoginResponse](ctx, c, request{op: "signup", method: http.MethodPost, path: "/auth/register", body: req})
}

// RefreshToken posts the stored refresh token; with none stored the request
// carries no body and relies on the backend's own session tracking.
func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) Result[api.LoginResponse] {
	req := request{op: "refresh_token", method: http.MethodPost, path: "/auth/refresh"}
	if refreshToken != "" {
		req.body = api.RefreshTokenRequest{RefreshToken: refreshToken}
	}
	return call[api.LoginResponse](ctx, c, req)
}

func (c *HTTPClient) CurrentUser(ctx context.Context, token string) Result[api.User] {
	r := call[wireUser](ctx, c, request{op: "current_user", method: http.MethodGet, path: "/auth/me", token: token})
	return mapResult(r, wireUser.normalize)
}

func (c *HTTPClient) CreateBooking(ctx context.Context, req api.BookingRequest) Result[api.BookingResponse] {
	return call[api.BookingResponse](ctx, c, request{
		op:     "create_booking",
		method: http.MethodPost,
		path:   "/booking/create-session",
		body:   req,
	})
}

func (c *HTTPClient) ConfirmBooking(ctx context.Context, req api.ConfirmBookingRequest) Result[api.Booking] {
	r := call[wireBooking](ctx, c, request{op: "confirm_booking", method: http.MethodPost, path: "/booking/confirm", body: req})
	return mapResult(r, wireBooking.normalize)
}

func (c *HTTPClient) UserBookings(ctx context.Context) Result[[]api.Booking] {
	r := call[[]wireBooking](ctx, c, request{op: "user_bookings", method: http.MethodGet, path: "/booking/user/bookings"})
	return mapResult(r, normalizeBookings)
}

func (c *HTTPClient) AllBookings(ctx context.Context) Result[[]api.Booking] {
	r := call[[]wireBooking](ctx, c, request{op: "all_bookings", method: http.MethodGet, path: "/admin/bookings"})
	return mapResult(r, normalizeBookings)
}

func (c *HTTPClient) CancelBooking(ctx context.Context, id string) Result[struct{}] {
	return call[struct{}](ctx, c, request{op: "cancel_booking", method: http.MethodDelete, path: "/booking/" + escape(id)})
}

func (c *HTTPClient) CreateClass(ctx context.Context, req api.CreateClassRequest) Result[api.GymClass] {
	r := call[wireClass](ctx, c, request{op: "create_class", method: http.MethodPost, path: "/classes", body: req})
	return mapResult(r, wireClass.normalize)
}

func (c *HTTPClient) UpdateClass(ctx context.Context, req api.UpdateClassRequest) Result[api.GymClass] {
	r := call[wireClass](ctx, c, request{op: "update_class", method: http.MethodPut, path: "/classes/" + escape(req.ID), body: req})
	return mapResult(r, wireClass.normalize)
}

func (c *HTTPClient) DeleteClass(ctx context.Context, id string) Result[struct{}] {
	return call[struct{}](ctx, c, request{op: "delete_class", method: http.MethodDelete, path: "/classes/" + escape(id)})
}

func (c *HTTPClient) CreateSession(ctx context.Context, req api.CreateSessionRequest) Result[api.ClassSession] {
	r := call[wireSession](ctx, c, request{op: "create_session", method: http.MethodPost, path: "/sessions", body: req})
	return mapResult(r, wireSession.normalize)
}

func (c *HTTPClient) UpdateSession(ctx context.Context, req api.UpdateSessionRequest) Result[api.ClassSession] {
	r := call[wireSession](ctx, c, request{op: "update_session", method: http.MethodPut, path: "/sessions/" + escape(req.ID), body: req})
	return mapResult(r, wireSession.normalize)
}

func (c *HTTPClient) DeleteSession(ctx context.Context, id string) Result[struct{}] {
	return call[struct{}](ctx, c, request{op: "delete_session", method: http.MethodDelete, path: "/sessions/" + escape(id)})
}

var _ API = (*HTTPClient)(nil)
