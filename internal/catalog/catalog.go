// Package catalog caches the class catalog for the storefront.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/logger"
)

// AllCategories is the filter value that matches every class.
const AllCategories = "All"

type ClassLister interface {
	ListClasses(ctx context.Context) client.Result[[]api.GymClass]
}

// Store holds the class list fetched once at startup. Readers never block
// on the network; Refresh replaces the list only when the fetch succeeds.
type Store struct {
	api ClassLister

	loadOnce sync.Once
	loadErr  error

	mu      sync.RWMutex
	classes []api.GymClass
	byID    map[string]int
	loaded  bool
	lastErr error
}

func NewStore(lister ClassLister) *Store {
	if lister == nil {
		panic("catalog: nil class lister")
	}
	return &Store{api: lister}
}

// Load fetches the catalog the first time it is called; later calls return
// the first outcome.
func (s *Store) Load(ctx context.Context) error {
	s.loadOnce.Do(func() {
		s.loadErr = s.Refresh(ctx)
	})
	return s.loadErr
}

func (s *Store) Refresh(ctx context.Context) error {
	res := s.api.ListClasses(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !res.Success {
		s.lastErr = res.Err()
		logger.Warn("failed to load class catalog", "error", res.Error)
		return s.lastErr
	}
	s.set(res.Data)
	s.loaded = true
	s.lastErr = nil
	logger.Debug("class catalog loaded", "classes", len(res.Data))
	return nil
}

func (s *Store) set(classes []api.GymClass) {
	s.classes = append([]api.GymClass(nil), classes...)
	s.byID = make(map[string]int, len(classes))
	for i, c := range s.classes {
		s.byID[c.ID] = i
	}
}

// Classes returns a copy of the cached list in backend order.
func (s *Store) Classes() []api.GymClass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.GymClass(nil), s.classes...)
}

func (s *Store) ByID(id string) (api.GymClass, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return api.GymClass{}, false
	}
	return s.classes[i], true
}

// Filter returns the classes in category, matched case-insensitively. An
// empty category or AllCategories returns everything.
func (s *Store) Filter(category string) []api.GymClass {
	if category == "" || strings.EqualFold(category, AllCategories) {
		return s.Classes()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []api.GymClass
	for _, c := range s.classes {
		if strings.EqualFold(c.Category, category) {
			out = append(out, c)
		}
	}
	return out
}

// Categories lists the distinct categories, sorted.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, c := range s.classes {
		if c.Category == "" {
			continue
		}
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		out = append(out, c.Category)
	}
	sort.Strings(out)
	return out
}

// Upsert replaces the class with the same id or appends it. Admin panels
// use it to keep the cache in step with their edits.
func (s *Store) Upsert(class api.GymClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byID[class.ID]; ok {
		s.classes[i] = class
		return
	}
	s.classes = append(s.classes, class)
	if s.byID == nil {
		s.byID = make(map[string]int)
	}
	s.byID[class.ID] = len(s.classes) - 1
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return
	}
	kept := s.classes[:0:0]
	for _, c := range s.classes {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.set(kept)
}

// Err reports the error of the most recent fetch, or nil.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
