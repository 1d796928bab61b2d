package tokens

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sitestats/usersmanager/internal/common"
	"github.com/sitestats/usersmanager/internal/server/models"
)

// InMemoryRepository is a mutex-guarded Repository used by the in-memory
// repository manager. Hash uniqueness is checked atomically under the lock.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byHash map[string]*models.AuthToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byHash: make(map[string]*models.AuthToken)}
}

func cloneToken(t *models.AuthToken) *models.AuthToken {
	c := *t
	return &c
}

func (r *InMemoryRepository) Create(ctx context.Context, token *models.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byHash[token.Hash]; ok {
		return common.ErrorDuplicateIdentity
	}
	if token.DateCreated.IsZero() {
		token.DateCreated = time.Now()
	}
	r.byHash[token.Hash] = cloneToken(token)
	return nil
}

func (r *InMemoryRepository) GetByHash(ctx context.Context, hash string, now time.Time) (*models.AuthToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byHash[hash]
	if !ok || t.Expired(now) {
		return nil, common.ErrorNotFound
	}
	return cloneToken(t), nil
}

func (r *InMemoryRepository) GetAllNonSystemForLogin(ctx context.Context, login string) ([]*models.AuthToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.AuthToken
	for _, t := range r.byHash {
		if t.Login == login && !t.System {
			result = append(result, cloneToken(t))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DateCreated.After(result[j].DateCreated)
	})
	return result, nil
}

func (r *InMemoryRepository) DeleteAllNonSystemForLogin(ctx context.Context, login string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, t := range r.byHash {
		if t.Login == login && !t.System {
			delete(r.byHash, hash)
		}
	}
	return nil
}

func (r *InMemoryRepository) DeleteAllForLogin(ctx context.Context, login string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, t := range r.byHash {
		if t.Login == login {
			delete(r.byHash, hash)
		}
	}
	return nil
}

func (r *InMemoryRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for hash, t := range r.byHash {
		if t.DateExpired != nil && t.DateExpired.Before(before) {
			delete(r.byHash, hash)
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) TouchLastUsed(ctx context.Context, id string, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.byHash {
		if t.ID == id {
			w := when
			t.LastUsed = &w
			return nil
		}
	}
	return nil
}
