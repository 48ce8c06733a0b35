package gym

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps classes and sessions in process, in insertion
// order. A single mutex serialises spot changes.
type MemoryRepository struct {
	mu       sync.Mutex
	classes  []*Class
	sessions []*Session
	seq      int
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

// Load replaces the contents with the given records, keeping their ids.
func (r *MemoryRepository) Load(classes []Class, sessions []Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.classes = make([]*Class, 0, len(classes))
	for i := range classes {
		c := classes[i]
		r.classes = append(r.classes, &c)
	}
	r.sessions = make([]*Session, 0, len(sessions))
	for i := range sessions {
		s := sessions[i]
		r.sessions = append(r.sessions, &s)
	}
}

func (r *MemoryRepository) nextIDLocked(prefix string) string {
	for {
		r.seq++
		id := fmt.Sprintf("%s-%d", prefix, r.seq)
		if r.classIndexLocked(id) < 0 && r.sessionIndexLocked(id) < 0 {
			return id
		}
	}
}

func (r *MemoryRepository) classIndexLocked(id string) int {
	for i, c := range r.classes {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) sessionIndexLocked(id string) int {
	for i, s := range r.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) ListClasses(_ context.Context) ([]Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, *c)
	}
	return out, nil
}

func (r *MemoryRepository) GetClass(_ context.Context, id string) (*Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.classIndexLocked(id)
	if i < 0 {
		return nil, ErrClassNotFound
	}
	c := *r.classes[i]
	return &c, nil
}

func (r *MemoryRepository) CreateClass(_ context.Context, c Class) (*Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" || r.classIndexLocked(c.ID) >= 0 {
		c.ID = r.nextIDLocked("class")
	}
	c.CreatedAt = r.now()
	stored := c
	r.classes = append(r.classes, &stored)
	return &c, nil
}

func (r *MemoryRepository) UpdateClass(_ context.Context, c Class) (*Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.classIndexLocked(c.ID)
	if i < 0 {
		return nil, ErrClassNotFound
	}
	c.CreatedAt = r.classes[i].CreatedAt
	stored := c
	r.classes[i] = &stored
	return &c, nil
}

func (r *MemoryRepository) DeleteClass(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.classIndexLocked(id)
	if i < 0 {
		return ErrClassNotFound
	}
	r.classes = append(r.classes[:i], r.classes[i+1:]...)

	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if s.ClassID != id {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	return nil
}

func (r *MemoryRepository) ListSessions(_ context.Context) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (r *MemoryRepository) ListSessionsByClass(_ context.Context, classID string) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Session{}
	for _, s := range r.sessions {
		if s.ClassID == classID {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *MemoryRepository) GetSession(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.sessionIndexLocked(id)
	if i < 0 {
		return nil, ErrSessionNotFound
	}
	s := *r.sessions[i]
	return &s, nil
}

func (r *MemoryRepository) CreateSession(_ context.Context, s Session) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.classIndexLocked(s.ClassID) < 0 {
		return nil, ErrClassNotFound
	}
	if s.ID == "" || r.sessionIndexLocked(s.ID) >= 0 {
		s.ID = r.nextIDLocked("session")
	}
	s.CreatedAt = r.now()
	stored := s
	r.sessions = append(r.sessions, &stored)
	return &s, nil
}

func (r *MemoryRepository) UpdateSession(_ context.Context, s Session) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.sessionIndexLocked(s.ID)
	if i < 0 {
		return nil, ErrSessionNotFound
	}
	current := r.sessions[i]
	current.Date = s.Date
	current.Time = s.Time
	current.SpotsLeft = s.SpotsLeft
	out := *current
	return &out, nil
}

func (r *MemoryRepository) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.sessionIndexLocked(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
	return nil
}

func (r *MemoryRepository) ReserveSpot(_ context.Context, sessionID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.sessionIndexLocked(sessionID)
	if i < 0 {
		return nil, ErrSessionNotFound
	}
	s := r.sessions[i]
	if s.SpotsLeft <= 0 {
		return nil, ErrNoSpotsAvailable
	}
	s.SpotsLeft--
	out := *s
	return &out, nil
}

func (r *MemoryRepository) ReleaseSpot(_ context.Context, sessionID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.sessionIndexLocked(sessionID)
	if i < 0 {
		return nil, ErrSessionNotFound
	}
	s := r.sessions[i]
	limit := -1
	if ci := r.classIndexLocked(s.ClassID); ci >= 0 {
		limit = r.classes[ci].TotalSpots
	}
	if limit < 0 || s.SpotsLeft < limit {
		s.SpotsLeft++
	}
	out := *s
	return &out, nil
}

var _ Repository = (*MemoryRepository)(nil)
