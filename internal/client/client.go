// Package client is the storefront's gateway to the GymFlow REST API.
//
// Every operation returns a Result envelope instead of an error: expected
// failures (non-2xx status, transport failure, malformed body) are reported
// through Result.Error and never escape as Go errors or panics.
package client

import (
	"context"
	"errors"

	"github.com/vslbak/gymflow-web/internal/api"
)

type Result[T any] struct {
	Success bool
	Data    T
	Error   string
}

func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](msg string) Result[T] {
	return Result[T]{Error: msg}
}

// Err converts a failed result into an error carrying the envelope message.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}

func mapResult[W, T any](r Result[W], f func(W) T) Result[T] {
	if !r.Success {
		return Fail[T](r.Error)
	}
	return OK(f(r.Data))
}

// TokenSource supplies the bearer token attached to authenticated calls.
type TokenSource interface {
	Token() string
}

type API interface {
	ListClasses(ctx context.Context) Result[[]api.GymClass]
	ListSessions(ctx context.Context) Result[[]api.ClassSession]
	GetSession(ctx context.Context, id string) Result[api.ClassSession]
	SessionsByClass(ctx context.Context, classID string) Result[[]api.ClassSession]

	Login(ctx context.Context, req api.LoginRequest) Result[api.LoginResponse]
	Signup(ctx context.Context, req api.SignupRequest) Result[api.LoginResponse]
	RefreshToken(ctx context.Context, refreshToken string) Result[api.LoginResponse]
	CurrentUser(ctx context.Context, token string) Result[api.User]

	CreateBooking(ctx context.Context, req api.BookingRequest) Result[api.BookingResponse]
	ConfirmBooking(ctx context.Context, req api.ConfirmBookingRequest) Result[api.Booking]
	UserBookings(ctx context.Context) Result[[]api.Booking]
	AllBookings(ctx context.Context) Result[[]api.Booking]
	CancelBooking(ctx context.Context, id string) Result[struct{}]

	CreateClass(ctx context.Context, req api.CreateClassRequest) Result[api.GymClass]
	UpdateClass(ctx context.Context, req api.UpdateClassRequest) Result[api.GymClass]
	DeleteClass(ctx context.Context, id string) Result[struct{}]

	CreateSession(ctx context.Context, req api.CreateSessionRequest) Result[api.ClassSession]
	UpdateSession(ctx context.Context, req api.UpdateSessionRequest) Result[api.ClassSession]
	DeleteSession(ctx context.Context, id string) Result[struct{}]
}
