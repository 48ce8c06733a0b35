package admin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/clock"
	"github.com/vslbak/gymflow-web/internal/logger"
)

// AllClasses disables the class filter in SessionPanel.Sessions.
const AllClasses = "all"

type SessionAPI interface {
	ListSessions(ctx context.Context) client.Result[[]api.ClassSession]
	ListClasses(ctx context.Context) client.Result[[]api.GymClass]
	CreateSession(ctx context.Context, req api.CreateSessionRequest) client.Result[api.ClassSession]
	UpdateSession(ctx context.Context, req api.UpdateSessionRequest) client.Result[api.ClassSession]
	DeleteSession(ctx context.Context, id string) client.Result[struct{}]
}

type SessionPanel struct {
	api   SessionAPI
	clock clock.Clock

	mu            sync.RWMutex
	sessions      []api.ClassSession
	classes       []api.GymClass
	pendingDelete string
}

func NewSessionPanel(gate Gate, sessionAPI SessionAPI, clk clock.Clock) (*SessionPanel, error) {
	if gate == nil || !gate.IsAdmin() {
		return nil, ErrForbidden
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &SessionPanel{api: sessionAPI, clock: clk}, nil
}

// Load fetches sessions and classes concurrently.
func (p *SessionPanel) Load(ctx context.Context) error {
	var (
		sessions []api.ClassSession
		classes  []api.GymClass
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res := p.api.ListSessions(gctx)
		if !res.Success {
			return &ActionError{Op: "load sessions", Message: res.Error}
		}
		sessions = res.Data
		return nil
	})
	g.Go(func() error {
		res := p.api.ListClasses(gctx)
		if !res.Success {
			return &ActionError{Op: "load classes", Message: res.Error}
		}
		classes = res.Data
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	p.mu.Lock()
	p.sessions = sessions
	p.classes = classes
	p.mu.Unlock()
	return nil
}

func (p *SessionPanel) Classes() []api.GymClass {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]api.GymClass(nil), p.classes...)
}

// Sessions returns the sessions of classID, or all of them for "" and
// AllClasses, ordered by date then time.
func (p *SessionPanel) Sessions(classID string) []api.ClassSession {
	p.mu.RLock()
	var out []api.ClassSession
	for _, s := range p.sessions {
		if classID == "" || strings.EqualFold(classID, AllClasses) || s.ClassID == classID {
			out = append(out, s)
		}
	}
	p.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return startTime(out[i]) < startTime(out[j])
	})
	return out
}

func startTime(s api.ClassSession) string {
	if s.Time != "" {
		return s.Time
	}
	if s.Class != nil {
		return s.Class.ClassTime
	}
	return ""
}

func (p *SessionPanel) classByID(id string) (api.GymClass, bool) {
	for _, c := range p.classes {
		if c.ID == id {
			return c, true
		}
	}
	return api.GymClass{}, false
}

func (p *SessionPanel) indexOf(id string) int {
	for i, s := range p.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// NewForm preselects the first class, today's date and the class capacity.
func (p *SessionPanel) NewForm() SessionForm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f := SessionForm{
		Date:      p.clock.Now().Format("2006-01-02"),
		Time:      DefaultClassTime,
		SpotsLeft: DefaultTotalSpots,
	}
	if len(p.classes) > 0 {
		f.ClassID = p.classes[0].ID
		if p.classes[0].TotalSpots > 0 {
			f.SpotsLeft = p.classes[0].TotalSpots
		}
	}
	return f
}

func (p *SessionPanel) EditForm(id string) (SessionForm, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i := p.indexOf(id)
	if i < 0 {
		return SessionForm{}, ErrSessionNotFound
	}
	s := p.sessions[i]
	return SessionForm{ID: s.ID, ClassID: s.ClassID, Date: s.Date, Time: startTime(s), SpotsLeft: s.SpotsLeft}, nil
}

func (p *SessionPanel) checkCapacity(form SessionForm) error {
	p.mu.RLock()
	class, ok := p.classByID(form.ClassID)
	p.mu.RUnlock()
	if !ok {
		return ErrClassNotFound
	}
	if form.SpotsLeft > class.TotalSpots {
		return fmt.Errorf("%w: %d > %d", ErrOverCapacity, form.SpotsLeft, class.TotalSpots)
	}
	return nil
}

func (p *SessionPanel) Create(ctx context.Context, form SessionForm) (api.ClassSession, error) {
	if err := validateForm(form); err != nil {
		return api.ClassSession{}, err
	}
	if err := p.checkCapacity(form); err != nil {
		return api.ClassSession{}, err
	}

	res := p.api.CreateSession(ctx, api.CreateSessionRequest{
		ClassID:   form.ClassID,
		Date:      form.Date,
		Time:      form.Time,
		SpotsLeft: form.SpotsLeft,
	})
	if !res.Success {
		return api.ClassSession{}, &ActionError{Op: "create session", Message: res.Error}
	}
	if res.Data.ID == "" {
		return api.ClassSession{}, ErrIncompleteResult
	}

	created := p.withClass(res.Data, form.ClassID)
	p.mu.Lock()
	p.sessions = append(p.sessions, created)
	p.mu.Unlock()
	logger.Info("session created", "session_id", created.ID, "class_id", created.ClassID, "date", created.Date)
	return created, nil
}

func (p *SessionPanel) Update(ctx context.Context, form SessionForm) (api.ClassSession, error) {
	p.mu.RLock()
	i := p.indexOf(form.ID)
	var current api.ClassSession
	if i >= 0 {
		current = p.sessions[i]
	}
	p.mu.RUnlock()
	if form.ID == "" || i < 0 {
		return api.ClassSession{}, ErrSessionNotFound
	}
	// the class of an existing session cannot be changed
	form.ClassID = current.ClassID

	if err := validateForm(form); err != nil {
		return api.ClassSession{}, err
	}
	if err := p.checkCapacity(form); err != nil {
		return api.ClassSession{}, err
	}

	res := p.api.UpdateSession(ctx, api.UpdateSessionRequest{
		ID:        form.ID,
		Date:      form.Date,
		Time:      form.Time,
		SpotsLeft: form.SpotsLeft,
	})
	if !res.Success {
		return api.ClassSession{}, &ActionError{Op: "update session", Message: res.Error}
	}
	updated := res.Data
	if updated.ID == "" {
		updated.ID = form.ID
	}
	updated = p.withClass(updated, current.ClassID)

	p.mu.Lock()
	if j := p.indexOf(updated.ID); j >= 0 {
		p.sessions[j] = updated
	}
	p.mu.Unlock()
	logger.Info("session updated", "session_id", updated.ID)
	return updated, nil
}

func (p *SessionPanel) withClass(s api.ClassSession, classID string) api.ClassSession {
	if s.ClassID == "" {
		s.ClassID = classID
	}
	if s.Class == nil {
		p.mu.RLock()
		if c, ok := p.classByID(s.ClassID); ok {
			s.Class = &c
		}
		p.mu.RUnlock()
	}
	return s
}

func (p *SessionPanel) RequestDelete(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.indexOf(id) < 0 {
		return ErrSessionNotFound
	}
	p.pendingDelete = id
	return nil
}

func (p *SessionPanel) PendingDelete() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pendingDelete
}

func (p *SessionPanel) CancelDelete() {
	p.mu.Lock()
	p.pendingDelete = ""
	p.mu.Unlock()
}

func (p *SessionPanel) ConfirmDelete(ctx context.Context) error {
	p.mu.Lock()
	id := p.pendingDelete
	p.pendingDelete = ""
	p.mu.Unlock()
	if id == "" {
		return ErrNoPendingDelete
	}

	res := p.api.DeleteSession(ctx, id)
	if !res.Success {
		return &ActionError{Op: "delete session", Message: res.Error}
	}

	p.mu.Lock()
	if i := p.indexOf(id); i >= 0 {
		p.sessions = append(p.sessions[:i:i], p.sessions[i+1:]...)
	}
	p.mu.Unlock()
	logger.Info("session deleted", "session_id", id)
	return nil
}

// RemoveByClass drops every cached session of classID and the class itself
// from the panel. It returns the number of sessions removed.
func (p *SessionPanel) RemoveByClass(classID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.sessions[:0:0]
	for _, s := range p.sessions {
		if s.ClassID != classID {
			kept = append(kept, s)
		}
	}
	removed := len(p.sessions) - len(kept)
	p.sessions = kept

	classes := p.classes[:0:0]
	for _, c := range p.classes {
		if c.ID != classID {
			classes = append(classes, c)
		}
	}
	p.classes = classes
	return removed
}
