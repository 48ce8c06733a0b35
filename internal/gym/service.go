package gym

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/duration"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

type Service interface {
	ListClasses(ctx context.Context) ([]api.GymClass, error)
	GetClass(ctx context.Context, id string) (*api.GymClass, error)
	CreateClass(ctx context.Context, req api.CreateClassRequest) (*api.GymClass, error)
	UpdateClass(ctx context.Context, req api.UpdateClassRequest) (*api.GymClass, error)
	DeleteClass(ctx context.Context, id string) error

	ListSessions(ctx context.Context) ([]api.ClassSession, error)
	SessionsByClass(ctx context.Context, classID string) ([]api.ClassSession, error)
	GetSession(ctx context.Context, id string) (*api.ClassSession, error)
	// SessionWithClass returns the session with its class snapshot embedded.
	SessionWithClass(ctx context.Context, id string) (*api.ClassSession, error)
	CreateSession(ctx context.Context, req api.CreateSessionRequest) (*api.ClassSession, error)
	UpdateSession(ctx context.Context, req api.UpdateSessionRequest) (*api.ClassSession, error)
	DeleteSession(ctx context.Context, id string) error

	ReserveSpot(ctx context.Context, sessionID string) (*api.ClassSession, error)
	ReleaseSpot(ctx context.Context, sessionID string) (*api.ClassSession, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateClass(c Class) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name is required")
	}
	if c.TotalSpots <= 0 {
		return invalid("totalSpots must be greater than 0")
	}
	if c.Price < 0 {
		return invalid("price must not be negative")
	}
	if !duration.Valid(c.Duration) {
		return invalid("duration %q is not an ISO-8601 duration", c.Duration)
	}
	if c.ClassTime != "" {
		if _, err := time.Parse("15:04", c.ClassTime); err != nil {
			return invalid("classTime must be HH:MM")
		}
	}
	return nil
}

func validateSession(s Session, class *Class) error {
	if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		return invalid("date must be YYYY-MM-DD")
	}
	if s.Time != "" {
		if _, err := time.Parse("15:04", s.Time); err != nil {
			return invalid("time must be HH:MM")
		}
	}
	if s.SpotsLeft < 0 || s.SpotsLeft > class.TotalSpots {
		return invalid("spotsLeft must be between 0 and %d", class.TotalSpots)
	}
	return nil
}

func (s *service) ListClasses(ctx context.Context) ([]api.GymClass, error) {
	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]api.GymClass, 0, len(classes))
	for i := range classes {
		out = append(out, classes[i].ToAPI())
	}
	return out, nil
}

func (s *service) GetClass(ctx context.Context, id string) (*api.GymClass, error) {
	class, err := s.repo.GetClass(ctx, id)
	if err != nil {
		return nil, err
	}
	out := class.ToAPI()
	return &out, nil
}

func (s *service) CreateClass(ctx context.Context, req api.CreateClassRequest) (*api.GymClass, error) {
	class := classFromRequest(req)
	if err := validateClass(class); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateClass(ctx, class)
	if err != nil {
		return nil, err
	}
	out := created.ToAPI()
	return &out, nil
}

// UpdateClass replaces the editable fields. Lowering totalSpots below the
// spots left on an existing session is rejected.
func (s *service) UpdateClass(ctx context.Context, req api.UpdateClassRequest) (*api.GymClass, error) {
	if _, err := s.repo.GetClass(ctx, req.ID); err != nil {
		return nil, err
	}

	class := classFromRequest(req.CreateClassRequest)
	class.ID = req.ID
	if err := validateClass(class); err != nil {
		return nil, err
	}

	sessions, err := s.repo.ListSessionsByClass(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if sess.SpotsLeft > class.TotalSpots {
			return nil, invalid("totalSpots %d is below the %d spots left on session %s", class.TotalSpots, sess.SpotsLeft, sess.ID)
		}
	}

	updated, err := s.repo.UpdateClass(ctx, class)
	if err != nil {
		return nil, err
	}
	out := updated.ToAPI()
	return &out, nil
}

func (s *service) DeleteClass(ctx context.Context, id string) error {
	return s.repo.DeleteClass(ctx, id)
}

func (s *service) ListSessions(ctx context.Context) ([]api.ClassSession, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]api.ClassSession, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessions[i].ToAPI(nil))
	}
	return out, nil
}

func (s *service) SessionsByClass(ctx context.Context, classID string) ([]api.ClassSession, error) {
	class, err := s.repo.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListSessionsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	out := make([]api.ClassSession, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessions[i].ToAPI(class))
	}
	return out, nil
}

func (s *service) GetSession(ctx context.Context, id string) (*api.ClassSession, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	out := session.ToAPI(nil)
	return &out, nil
}

func (s *service) SessionWithClass(ctx context.Context, id string) (*api.ClassSession, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	class, err := s.repo.GetClass(ctx, session.ClassID)
	if err != nil {
		return nil, err
	}
	out := session.ToAPI(class)
	return &out, nil
}

func (s *service) CreateSession(ctx context.Context, req api.CreateSessionRequest) (*api.ClassSession, error) {
	class, err := s.repo.GetClass(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	session := Session{
		ClassID:   req.ClassID,
		Date:      req.Date,
		Time:      req.Time,
		SpotsLeft: req.SpotsLeft,
	}
	if session.Time == "" {
		session.Time = class.ClassTime
	}
	if err := validateSession(session, class); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateSession(ctx, session)
	if err != nil {
		return nil, err
	}
	out := created.ToAPI(nil)
	return &out, nil
}

// UpdateSession edits date, time and spots. The owning class never changes.
func (s *service) UpdateSession(ctx context.Context, req api.UpdateSessionRequest) (*api.ClassSession, error) {
	current, err := s.repo.GetSession(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	class, err := s.repo.GetClass(ctx, current.ClassID)
	if err != nil {
		return nil, err
	}

	session := *current
	session.Date = req.Date
	session.Time = req.Time
	session.SpotsLeft = req.SpotsLeft
	if err := validateSession(session, class); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateSession(ctx, session)
	if err != nil {
		return nil, err
	}
	out := updated.ToAPI(nil)
	return &out, nil
}

func (s *service) DeleteSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func (s *service) ReserveSpot(ctx context.Context, sessionID string) (*api.ClassSession, error) {
	session, err := s.repo.ReserveSpot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := session.ToAPI(nil)
	return &out, nil
}

func (s *service) ReleaseSpot(ctx context.Context, sessionID string) (*api.ClassSession, error) {
	session, err := s.repo.ReleaseSpot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := session.ToAPI(nil)
	return &out, nil
}
