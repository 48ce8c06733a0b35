package user

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryRepository keeps users in process. Ids are sequential decimal
// strings starting at "1".
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
	next  int
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]*User),
		next:  1,
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, username, email, phone, passwordHash, role string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrEmailExists
		}
	}

	u := &User{
		ID:           strconv.Itoa(r.next),
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    r.now(),
	}
	r.next++
	r.users[u.ID] = u

	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

var _ Repository = (*MemoryRepository)(nil)
