// Package mockapi serves the storefront API contract in process, straight
// over the backend services. Business errors reach the caller verbatim
// instead of as an HTTP status line.
package mockapi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/booking"
	"github.com/vslbak/gymflow-web/internal/checkout"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/email"
	"github.com/vslbak/gymflow-web/internal/gym"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/metrics"
	"github.com/vslbak/gymflow-web/internal/seed"
	"github.com/vslbak/gymflow-web/internal/user"
)

const (
	msgNotAuthenticated = "Not authenticated"
	msgInvalidToken     = "Invalid or malformed token"
	msgTokenExpired     = "Token expired"
	msgForbidden        = "Insufficient permissions"
)

// Backend is the set of services the mock calls into.
type Backend struct {
	Users    user.Service
	Gym      gym.Service
	Bookings booking.Service
	Issuer   *auth.TokenIssuer
}

type API struct {
	backend Backend

	mu     sync.RWMutex
	tokens client.TokenSource
}

var _ client.API = (*API)(nil)

func New(b Backend) *API {
	if b.Users == nil || b.Gym == nil || b.Bookings == nil || b.Issuer == nil {
		panic("mockapi: nil dependency")
	}
	return &API{backend: b}
}

// NewSeeded builds a mock over fresh memory stores holding the demo data.
// Checkout redirects point at publicURL.
func NewSeeded(ctx context.Context, now time.Time, publicURL string) (*API, error) {
	users := user.NewMemoryRepository()
	gymRepo := gym.NewMemoryRepository()
	bookings := booking.NewMemoryRepository()
	if err := seed.Load(ctx, seed.Target{Users: users, Gym: gymRepo, Bookings: bookings}, now); err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer("gymflow-mock")
	if err != nil {
		return nil, err
	}
	mailer := email.NewMailer(email.LogTransport{})
	userService := user.NewService(users, issuer, mailer)
	gymService := gym.NewService(gymRepo)

	return New(Backend{
		Users:    userService,
		Gym:      gymService,
		Bookings: booking.NewService(bookings, gymService, userService, checkout.NewRedirectProvider(publicURL), mailer),
		Issuer:   issuer,
	}), nil
}

func (a *API) SetTokenSource(ts client.TokenSource) {
	a.mu.Lock()
	a.tokens = ts
	a.mu.Unlock()
}

func (a *API) token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.tokens == nil {
		return ""
	}
	return a.tokens.Token()
}

func call[T any](op string, fn func() client.Result[T]) client.Result[T] {
	start := time.Now()
	res := fn()
	metrics.RecordClientCall(op, res.Success, time.Since(start).Seconds())
	if !res.Success {
		logger.Debug("mock api call failed", "op", op, "error", res.Error)
	}
	return res
}

func fromService[T any](v *T, err error) client.Result[T] {
	if err != nil {
		return client.Fail[T](err.Error())
	}
	if v == nil {
		var zero T
		return client.OK(zero)
	}
	return client.OK(*v)
}

func validate[T any](req interface{}) (client.Result[T], bool) {
	if err := binding.Validator.ValidateStruct(req); err != nil {
		resp := api.NewValidationResponse(err)
		msg := resp.Error
		if len(resp.Details) > 0 {
			msg = resp.Details[0].Message
		}
		return client.Fail[T](msg), false
	}
	return client.Result[T]{}, true
}

// authorize resolves the caller from token, or from the token source when
// token is empty.
func (a *API) authorize(token string, admin bool) (*auth.JWTClaims, string) {
	if token == "" {
		token = a.token()
	}
	if token == "" {
		return nil, msgNotAuthenticated
	}
	claims, err := a.backend.Issuer.ValidateAccess(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, msgTokenExpired
		}
		return nil, msgInvalidToken
	}
	if admin && !strings.EqualFold(claims.Role, api.RoleAdmin) {
		return nil, msgForbidden
	}
	return claims, ""
}

func loginResponse(tokens auth.Tokens) api.LoginResponse {
	return api.LoginResponse{
		AccessToken:  tokens.AccessToken,
		ExpiresIn:    tokens.ExpiresIn,
		RefreshToken: tokens.RefreshToken,
	}
}

func (a *API) ListClasses(ctx context.Context) client.Result[[]api.GymClass] {
	return call("list_classes", func() client.Result[[]api.GymClass] {
		classes, err := a.backend.Gym.ListClasses(ctx)
		return fromService(&classes, err)
	})
}

func (a *API) ListSessions(ctx context.Context) client.Result[[]api.ClassSession] {
	return call("list_sessions", func() client.Result[[]api.ClassSession] {
		sessions, err := a.backend.Gym.ListSessions(ctx)
		return fromService(&sessions, err)
	})
}

func (a *API) GetSession(ctx context.Context, id string) client.Result[api.ClassSession] {
	return call("get_session", func() client.Result[api.ClassSession] {
		return fromService(a.backend.Gym.GetSession(ctx, id))
	})
}

func (a *API) SessionsByClass(ctx context.Context, classID string) client.Result[[]api.ClassSession] {
	return call("sessions_by_class", func() client.Result[[]api.ClassSession] {
		sessions, err := a.backend.Gym.SessionsByClass(ctx, classID)
		return fromService(&sessions, err)
	})
}

func (a *API) Login(ctx context.Context, req api.LoginRequest) client.Result[api.LoginResponse] {
	return call("login", func() client.Result[api.LoginResponse] {
		if res, ok := validate[api.LoginResponse](req); !ok {
			return res
		}
		_, tokens, err := a.backend.Users.Login(ctx, req)
		if err != nil {
			return client.Fail[api.LoginResponse](err.Error())
		}
		return client.OK(loginResponse(tokens))
	})
}

func (a *API) Signup(ctx context.Context, req api.SignupRequest) client.Result[api.LoginResponse] {
	return call("signup", func() client.Result[api.LoginResponse] {
		if res, ok := validate[api.LoginResponse](req); !ok {
			return res
		}
		_, tokens, err := a.backend.Users.Register(ctx, req)
		if err != nil {
			return client.Fail[api.LoginResponse](err.Error())
		}
		return client.OK(loginResponse(tokens))
	})
}

func (a *API) RefreshToken(ctx context.Context, refreshToken string) client.Result[api.LoginResponse] {
	return call("refresh_token", func() client.Result[api.LoginResponse] {
		_, tokens, err := a.backend.Users.Refresh(ctx, refreshToken)
		if err != nil {
			return client.Fail[api.LoginResponse](err.Error())
		}
		return client.OK(loginResponse(tokens))
	})
}

func (a *API) CurrentUser(ctx context.Context, token string) client.Result[api.User] {
	return call("current_user", func() client.Result[api.User] {
		claims, msg := a.authorize(token, false)
		if claims == nil {
			return client.Fail[api.User](msg)
		}
		u, err := a.backend.Users.GetByID(ctx, claims.UserID)
		if err != nil {
			return client.Fail[api.User](err.Error())
		}
		return client.OK(u.ToAPI())
	})
}

func (a *API) CreateBooking(ctx context.Context, req api.BookingRequest) client.Result[api.BookingResponse] {
	return call("create_booking", func() client.Result[api.BookingResponse] {
		claims, msg := a.authorize("", false)
		if claims == nil {
			return client.Fail[api.BookingResponse](msg)
		}
		if res, ok := validate[api.BookingResponse](req); !ok {
			return res
		}
		return fromService(a.backend.Bookings.Create(ctx, claims.UserID, req))
	})
}

func (a *API) ConfirmBooking(ctx context.Context, req api.ConfirmBookingRequest) client.Result[api.Booking] {
	return call("confirm_booking", func() client.Result[api.Booking] {
		claims, msg := a.authorize("", false)
		if claims == nil {
			return client.Fail[api.Booking](msg)
		}
		if res, ok := validate[api.Booking](req); !ok {
			return res
		}
		return fromService(a.backend.Bookings.Confirm(ctx, claims.UserID, req.SessionID))
	})
}

func (a *API) UserBookings(ctx context.Context) client.Result[[]api.Booking] {
	return call("user_bookings", func() client.Result[[]api.Booking] {
		claims, msg := a.authorize("", false)
		if claims == nil {
			return client.Fail[[]api.Booking](msg)
		}
		bookings, err := a.backend.Bookings.ListForUser(ctx, claims.UserID)
		return fromService(&bookings, err)
	})
}

func (a *API) AllBookings(ctx context.Context) client.Result[[]api.Booking] {
	return call("all_bookings", func() client.Result[[]api.Booking] {
		if claims, msg := a.authorize("", true); claims == nil {
			return client.Fail[[]api.Booking](msg)
		}
		bookings, err := a.backend.Bookings.ListAll(ctx)
		return fromService(&bookings, err)
	})
}

func (a *API) CancelBooking(ctx context.Context, id string) client.Result[struct{}] {
	return call("cancel_booking", func() client.Result[struct{}] {
		claims, msg := a.authorize("", false)
		if claims == nil {
			return client.Fail[struct{}](msg)
		}
		if err := a.backend.Bookings.Cancel(ctx, claims.UserID, id); err != nil {
			return client.Fail[struct{}](err.Error())
		}
		return client.OK(struct{}{})
	})
}

func (a *API) CreateClass(ctx context.Context, req api.CreateClassRequest) client.Result[api.GymClass] {
	return call("create_class", func() client.Result[api.GymClass] {
		if claims, msg := a.authorize("", true); claims == nil {
			return client.Fail[api.GymClass](msg)
		}
		if res, ok := validate[api.GymClass](req); !ok {
			return res
		}
		return fromService(a.backend.Gym.CreateClass(ctx, req))
	})
}

func (a *API) UpdateClass(ctx context.Context, req api.UpdateClassRequest) client.Result[api.GymClass] {
	return call("update_class", func() client.Result[api.GymClass] {
		if claims, msg := a.authorize("", true); claims == nil {
			return client.Fail[api.GymClass](msg)
		}
		if req.ID == "" {
			return client.Fail[api.GymClass](gym.ErrClassNotFound.Error())
		}
		if res, ok := validate[api.GymClass](req.CreateClassRequest); !ok {
			return res
		}
		return fromService(a.backend.Gym.UpdateClass(ctx, req))
	})
}

func (a *API) DeleteClass(ctx context.Context, id string) client.Result[struct{}] {
	return call("delete_class", func() client.Result[struct{}] {
		if claims, msg := a.authorize("", true); claims == nil {
			return client.Fail[struct{}](msg)
		}
		if err := a.backend.Gym.DeleteClass(ctx, id); err != nil {
			return client.Fail[struct{}](err.Error())
		}
		return client.OK(struct{}{})
	})
}

func (a *API) CreateSession(ctx context.Context, req api.CreateSessionRequest) client.Result[api.ClassSession] {
	return call("create_session", func() client.Result[api.ClassSession] {
		if claims, msg := a.authorize("", true); claims == nil {
			return client.Fail[api.ClassSession](msg)
		}
		if res, ok := validate[api.ClassSession](req); !ok {
			return res
		}
		return fromService(a.backend.Gym.CreateSession(ctx, req))
	})
}

func (a *API) UpdateSession(ctx context.Context, req api.UpdateSessionRequest) client.Result[api.ClassSession] {
	return call("update_session", func() client.Result[api.ClassSession] {
		if claims, msg := a.authorize("", true); claims == nil {
			return client.Fail[api.ClassSession](msg)
		}
		if req.ID == "" {
			return client.Fail[api.ClassSession](gym.ErrSessionNotFound.Error())
		}
		if res, ok := validate[api.ClassSession](req); !ok {
			return res
		}
		return fromService(a.backend.Gym.UpdateSession(ctx, req))
	})
}

func (a *API) DeleteSession(ctx context.Context, id string) client.Result[struct{}] {
	return call("delete_session", func() client.Result[struct{}] {
		if claims, msg := a.authorize("", true); claims == nil {
			return client.Fail[struct{}](msg)
		}
		if err := a.backend.Gym.DeleteSession(ctx, id); err != nil {
			return client.Fail[struct{}](err.Error())
		}
		return client.OK(struct{}{})
	})
}
