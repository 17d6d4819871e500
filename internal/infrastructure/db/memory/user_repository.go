// Package memory is a process-local user store. Uniqueness is enforced under the
// same lock as the write, so it is race-free within one process.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	mu         sync.RWMutex
	byID       map[int64]*domain.User
	byUsername map[string]int64
	byEmail    map[string]int64
	nextID     int64
	now        func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[int64]*domain.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[username]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *UserRepository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byUsername[user.Username]; ok && id != user.ID {
		return nil, domain.ErrUsernameTaken
	}
	if id, ok := r.byEmail[user.Email]; ok && id != user.ID {
		return nil, domain.ErrEmailTaken
	}

	now := r.now()
	stored := user.Clone()

	if stored.ID == 0 {
		r.nextID++
		stored.ID = r.nextID
		stored.CreatedAt = now
	} else {
		prev, ok := r.byID[stored.ID]
		if !ok {
			return nil, domain.ErrUserNotFound
		}
		stored.CreatedAt = prev.CreatedAt
		delete(r.byUsername, prev.Username)
		delete(r.byEmail, prev.Email)
	}
	stored.UpdatedAt = now

	r.byID[stored.ID] = stored
	r.byUsername[stored.Username] = stored.ID
	r.byEmail[stored.Email] = stored.ID

	return stored.Clone(), nil
}

func (r *UserRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byUsername, u.Username)
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

func (r *UserRepository) FindAll(_ context.Context, page ports.PageRequest) ([]*domain.User, int64, error) {
	r.mu.RLock()
	all := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, u.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *domain.User) int {
		c := compareBy(page.SortBy, a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if page.Descending {
			return -c
		}
		return c
	})

	total := int64(len(all))
	start := page.Offset()
	if start >= total {
		return []*domain.User{}, total, nil
	}
	end := min(start+int64(page.Size), total)
	return all[start:end], total, nil
}

func (r *UserRepository) Ping(context.Context) error { return nil }

func compareBy(field ports.SortField, a, b *domain.User) int {
	switch field {
	case ports.SortByUsername:
		return cmp.Compare(a.Username, b.Username)
	case ports.SortByEmail:
		return cmp.Compare(a.Email, b.Email)
	case ports.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case ports.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}
