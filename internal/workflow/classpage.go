// Package workflow drives the class detail page: session date selection,
// availability and booking.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/logger"
)

// LowAvailability is the spot count at or below which a session is flagged
// as nearly full.
const LowAvailability = 5

var (
	ErrMissingClassID    = errors.New("class id is required")
	ErrClassNotFound     = errors.New("class not found")
	ErrNoSession         = errors.New("no session available for the selected date")
	ErrFullyBooked       = errors.New("No spots available")
	ErrBookingInProgress = errors.New("booking already in progress")
)

// LoginRequiredError is returned by Book when nobody is signed in.
// RedirectPath sends the user to the login page and back afterwards.
type LoginRequiredError struct {
	RedirectPath string
}

func (e *LoginRequiredError) Error() string {
	return "login required"
}

// BookingError carries the backend's message for a rejected booking.
type BookingError struct {
	Message string
}

func (e *BookingError) Error() string {
	return e.Message
}

type SessionAPI interface {
	SessionsByClass(ctx context.Context, classID string) client.Result[[]api.ClassSession]
	CreateBooking(ctx context.Context, req api.BookingRequest) client.Result[api.BookingResponse]
}

type ClassLookup interface {
	Load(ctx context.Context) error
	ByID(id string) (api.GymClass, bool)
}

type AuthState interface {
	IsAuthenticated() bool
}

type Deps struct {
	API     SessionAPI
	Catalog ClassLookup
	Auth    AuthState
}

type Availability struct {
	SpotsLeft   int
	TotalSpots  int
	FullyBooked bool
	Low         bool
}

type Outcome struct {
	RedirectURL string
}

type ClassPage struct {
	deps  Deps
	class api.GymClass

	mu       sync.RWMutex
	sessions []api.ClassSession
	dates    []string
	selected string
	loadErr  error

	booking atomic.Bool
}

// Open loads the class and its sessions and selects the earliest date.
// A failed session fetch is not an error: the page opens with no dates and
// LoadError reports why.
func Open(ctx context.Context, classID string, deps Deps) (*ClassPage, error) {
	if deps.API == nil || deps.Catalog == nil || deps.Auth == nil {
		panic("workflow: nil dependency")
	}
	if classID == "" {
		return nil, ErrMissingClassID
	}
	if err := deps.Catalog.Load(ctx); err != nil {
		logger.Warn("class catalog unavailable", "error", err)
	}
	class, ok := deps.Catalog.ByID(classID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, classID)
	}

	p := &ClassPage{deps: deps, class: class}
	p.load(ctx)
	return p, nil
}

func (p *ClassPage) load(ctx context.Context) {
	res := p.deps.API.SessionsByClass(ctx, p.class.ID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !res.Success {
		p.loadErr = res.Err()
		logger.Warn("failed to load sessions", "class_id", p.class.ID, "error", res.Error)
		return
	}
	p.loadErr = nil
	p.sessions = res.Data
	p.dates = distinctDates(res.Data)

	if p.selected != "" && containsDate(p.dates, p.selected) {
		return
	}
	p.selected = ""
	if len(p.dates) > 0 {
		p.selected = p.dates[0]
	}
}

// Reload re-fetches sessions so that spot counts reflect the backend. The
// selected date is kept when it is still offered.
func (p *ClassPage) Reload(ctx context.Context) {
	p.load(ctx)
}

func distinctDates(sessions []api.ClassSession) []string {
	seen := make(map[string]struct{}, len(sessions))
	dates := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if _, ok := seen[s.Date]; ok {
			continue
		}
		seen[s.Date] = struct{}{}
		dates = append(dates, s.Date)
	}
	sort.Strings(dates)
	return dates
}

func containsDate(dates []string, date string) bool {
	i := sort.SearchStrings(dates, date)
	return i < len(dates) && dates[i] == date
}

func (p *ClassPage) Class() api.GymClass {
	return p.class
}

// Path is the page's route, used as the post-login return path.
func (p *ClassPage) Path() string {
	return "/class/" + url.PathEscape(p.class.ID)
}

func (p *ClassPage) LoadError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadErr
}

func (p *ClassPage) AvailableDates() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.dates...)
}

func (p *ClassPage) SelectedDate() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

// Select switches to date. Dates without a session are accepted; Session
// then returns nil.
func (p *ClassPage) Select(date string) {
	p.mu.Lock()
	p.selected = date
	p.mu.Unlock()
}

// Session resolves the session for the selected date.
func (p *ClassPage) Session() *api.ClassSession {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.selected == "" {
		return nil
	}
	for i := range p.sessions {
		if p.sessions[i].Date == p.selected {
			s := p.sessions[i]
			return &s
		}
	}
	return nil
}

func (p *ClassPage) Availability() (Availability, bool) {
	s := p.Session()
	if s == nil {
		return Availability{}, false
	}
	total := p.class.TotalSpots
	if s.Class != nil && s.Class.TotalSpots > 0 {
		total = s.Class.TotalSpots
	}
	return Availability{
		SpotsLeft:   s.SpotsLeft,
		TotalSpots:  total,
		FullyBooked: s.SpotsLeft <= 0,
		Low:         s.SpotsLeft <= LowAvailability,
	}, true
}

// CanBook mirrors the state of the booking button.
func (p *ClassPage) CanBook() bool {
	if p.booking.Load() {
		return false
	}
	s := p.Session()
	return s != nil && s.SpotsLeft > 0
}

// Book submits a booking for the selected session. Local session state is
// never changed; call Reload to see the backend's spot count.
func (p *ClassPage) Book(ctx context.Context) (Outcome, error) {
	if !p.booking.CompareAndSwap(false, true) {
		return Outcome{}, ErrBookingInProgress
	}
	defer p.booking.Store(false)

	if !p.deps.Auth.IsAuthenticated() {
		return Outcome{}, &LoginRequiredError{RedirectPath: LoginRedirect(p.Path())}
	}
	s := p.Session()
	if s == nil {
		return Outcome{}, ErrNoSession
	}
	if s.SpotsLeft <= 0 {
		return Outcome{}, ErrFullyBooked
	}

	res := p.deps.API.CreateBooking(ctx, api.BookingRequest{
		ClassSession: s.ID,
		ClassName:    p.class.Name,
		Amount:       p.class.Price,
	})
	if !res.Success {
		logger.Info("booking rejected", "session_id", s.ID, "error", res.Error)
		return Outcome{}, &BookingError{Message: res.Error}
	}
	if res.Data.URL == "" {
		return Outcome{}, &BookingError{Message: "booking response carried no redirect url"}
	}

	logger.Info("booking created", "session_id", s.ID, "class", p.class.Name)
	return Outcome{RedirectURL: res.Data.URL}, nil
}

// LoginRedirect builds the login route that returns to path afterwards.
func LoginRedirect(path string) string {
	return "/login?redirect=" + url.QueryEscape(path)
}
