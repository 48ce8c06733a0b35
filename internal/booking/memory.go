package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vslbak/gymflow-web/internal/api"
)

// MemoryRepository keeps bookings in process. Listing is newest first.
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	seq      int
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		bookings: make(map[string]*Booking),
		now:      time.Now,
	}
}

// Load adds the given bookings, keeping their ids.
func (r *MemoryRepository) Load(bookings []Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range bookings {
		b := bookings[i]
		r.bookings[b.ID] = &b
	}
}

func (r *MemoryRepository) nextIDLocked() string {
	for {
		r.seq++
		id := fmt.Sprintf("booking-%03d", r.seq)
		if _, taken := r.bookings[id]; !taken {
			return id
		}
	}
}

func (r *MemoryRepository) Create(_ context.Context, b Booking) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bookings[b.ID]; b.ID == "" || taken {
		b.ID = r.nextIDLocked()
	}
	if b.Status == "" {
		b.Status = api.StatusPending
	}
	b.CreatedAt = r.now()
	stored := b
	r.bookings[b.ID] = &stored
	return &b, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (r *MemoryRepository) GetByCheckoutRef(_ context.Context, ref string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if ref != "" && b.CheckoutRef == ref {
			out := *b
			return &out, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (r *MemoryRepository) list(keep func(*Booking) bool) []Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Booking{}
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]Booking, error) {
	return r.list(func(b *Booking) bool { return b.UserID == userID }), nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]Booking, error) {
	return r.list(func(*Booking) bool { return true }), nil
}

func (r *MemoryRepository) SetCheckoutRef(_ context.Context, id, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	b.CheckoutRef = ref
	return nil
}

func (r *MemoryRepository) Confirm(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	switch b.Status {
	case api.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case api.StatusPending:
		now := r.now()
		b.Status = api.StatusConfirmed
		b.ConfirmedAt = &now
	}
	out := *b
	return &out, nil
}

func (r *MemoryRepository) Cancel(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.Status == api.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	now := r.now()
	b.Status = api.StatusCancelled
	b.CancelledAt = &now
	out := *b
	return &out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(r.bookings, id)
	return nil
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)
