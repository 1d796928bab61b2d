package preferences

import (
	"context"
	"sync"

	"github.com/sitestats/usersmanager/internal/common"
)

type prefKey struct {
	login string
	name  string
}

// InMemoryRepository is a mutex-guarded Repository used by the in-memory
// repository manager.
type InMemoryRepository struct {
	mu     sync.RWMutex
	values map[prefKey]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{values: make(map[prefKey]string)}
}

func (r *InMemoryRepository) Get(ctx context.Context, login string, name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.values[prefKey{login: login, name: name}]; ok {
		return v, nil
	}
	return "", common.ErrorNotFound
}

func (r *InMemoryRepository) Set(ctx context.Context, login string, name string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[prefKey{login: login, name: name}] = value
	return nil
}

func (r *InMemoryRepository) DeleteAllForLogin(ctx context.Context, login string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.values {
		if key.login == login {
			delete(r.values, key)
		}
	}
	return nil
}
