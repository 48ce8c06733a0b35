package gym

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedRepo() *MemoryRepository {
	repo := NewMemoryRepository()
	repo.Load(
		[]Class{
			{ID: "class-1", Name: "Power Yoga Flow", Duration: "PT1H", TotalSpots: 20, ClassTime: "18:00"},
			{ID: "class-2", Name: "HIIT Cardio Blast", Duration: "PT45M", TotalSpots: 3, ClassTime: "07:30"},
		},
		[]Session{
			{ID: "session-1", ClassID: "class-1", Date: "2026-10-20", Time: "18:00", SpotsLeft: 5},
			{ID: "session-2", ClassID: "class-2", Date: "2026-10-19", Time: "07:30", SpotsLeft: 1},
			{ID: "session-3", ClassID: "class-2", Date: "2026-10-18", Time: "07:30", SpotsLeft: 3},
		},
	)
	return repo
}

func TestMemory_ReserveAndRelease(t *testing.T) {
	repo := newLoadedRepo()
	ctx := context.Background()

	s, err := repo.ReserveSpot(ctx, "session-2")
	require.NoError(t, err)
	assert.Equal(t, 0, s.SpotsLeft)

	_, err = repo.ReserveSpot(ctx, "session-2")
	assert.ErrorIs(t, err, ErrNoSpotsAvailable)

	s, err = repo.ReleaseSpot(ctx, "session-2")
	require.NoError(t, err)
	assert.Equal(t, 1, s.SpotsLeft)

	// capped at the class total
	s, err = repo.ReleaseSpot(ctx, "session-3")
	require.NoError(t, err)
	assert.Equal(t, 3, s.SpotsLeft)

	_, err = repo.ReserveSpot(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = repo.ReleaseSpot(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemory_ConcurrentReservationsNeverOversell(t *testing.T) {
	repo := newLoadedRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ReserveSpot(ctx, "session-1"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	s, err := repo.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.SpotsLeft)
}

func TestMemory_DeleteClassCascades(t *testing.T) {
	repo := newLoadedRepo()
	ctx := context.Background()

	require.NoError(t, repo.DeleteClass(ctx, "class-2"))

	sessions, err := repo.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "session-1", sessions[0].ID)

	assert.ErrorIs(t, repo.DeleteClass(ctx, "class-2"), ErrClassNotFound)
}

func TestMemory_CreateAssignsFreshIDs(t *testing.T) {
	repo := newLoadedRepo()
	ctx := context.Background()

	c, err := repo.CreateClass(ctx, Class{Name: "Spin", Duration: "PT45M", TotalSpots: 30})
	require.NoError(t, err)
	assert.Equal(t, "class-3", c.ID)

	s, err := repo.CreateSession(ctx, Session{ClassID: c.ID, Date: "2026-10-21", SpotsLeft: 30})
	require.NoError(t, err)
	assert.Equal(t, "session-4", s.ID)

	_, err = repo.CreateSession(ctx, Session{ClassID: "nope", Date: "2026-10-21"})
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestMemory_ListSessionsByClassSorted(t *testing.T) {
	repo := newLoadedRepo()

	sessions, err := repo.ListSessionsByClass(context.Background(), "class-2")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "session-3", sessions[0].ID)
	assert.Equal(t, "session-2", sessions[1].ID)
}

func TestMemory_UpdateSessionKeepsClass(t *testing.T) {
	repo := newLoadedRepo()
	ctx := context.Background()

	s, err := repo.UpdateSession(ctx, Session{ID: "session-1", ClassID: "class-2", Date: "2026-11-01", Time: "09:00", SpotsLeft: 2})
	require.NoError(t, err)
	assert.Equal(t, "class-1", s.ClassID)
	assert.Equal(t, "2026-11-01", s.Date)
	assert.Equal(t, 2, s.SpotsLeft)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	repo := newLoadedRepo()
	ctx := context.Background()

	c, err := repo.GetClass(ctx, "class-1")
	require.NoError(t, err)
	c.Name = "changed"

	again, err := repo.GetClass(ctx, "class-1")
	require.NoError(t, err)
	assert.Equal(t, "Power Yoga Flow", again.Name)
}
