package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/server/models"
)

// InMemoryRepository is a mutex-guarded map-backed Repository. It backs the
// in-memory repository manager used by service tests; uniqueness checks are
// atomic under the lock, matching the database's unique constraints.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*models.User)}
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Login]; ok {
		return common.ErrorDuplicateIdentity
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.ErrorDuplicateIdentity
		}
	}

	now := time.Now()
	if user.DateRegistered.IsZero() {
		user.DateRegistered = now
	}
	if user.TsPasswordModified.IsZero() {
		user.TsPasswordModified = now
	}
	if user.TsChangesViewed.IsZero() {
		user.TsChangesViewed = now
	}
	r.users[user.Login] = clone(user)
	return nil
}

func (r *InMemoryRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[login]; ok {
		return clone(u), nil
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByPasswordHash(ctx context.Context, hash string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.PasswordHash == hash {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) sortedLogins() []string {
	logins := make([]string, 0, len(r.users))
	for login := range r.users {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.User
	for _, login := range r.sortedLogins() {
		result = append(result, clone(r.users[login]))
	}
	return result, nil
}

func (r *InMemoryRepository) ListSuperusers(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.User
	for _, login := range r.sortedLogins() {
		if r.users[login].Superuser {
			result = append(result, clone(r.users[login]))
		}
	}
	return result, nil
}

func (r *InMemoryRepository) ListLogins(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedLogins(), nil
}

func (r *InMemoryRepository) UpdatePassword(ctx context.Context, login string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[login]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.TsPasswordModified = time.Now()
	return nil
}

func (r *InMemoryRepository) SetSuperuser(ctx context.Context, login string, superuser bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[login]
	if !ok {
		return common.ErrorNotFound
	}
	u.Superuser = superuser
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, login string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[login]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, login)
	return nil
}
