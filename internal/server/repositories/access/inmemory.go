package access

import (
	"context"
	"sort"
	"sync"

	"github.com/sitestats/usersmanager/internal/server/models"
)

type grantKey struct {
	login  string
	idSite int64
}

// InMemoryRepository is a mutex-guarded Repository used by the in-memory
// repository manager.
type InMemoryRepository struct {
	mu     sync.RWMutex
	grants map[grantKey]models.Access
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{grants: make(map[grantKey]models.Access)}
}

func (r *InMemoryRepository) Set(ctx context.Context, login string, idSite int64, level models.Access) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := grantKey{login: login, idSite: idSite}
	if level == models.AccessNoAccess {
		delete(r.grants, key)
		return nil
	}
	r.grants[key] = level
	return nil
}

func (r *InMemoryRepository) GetSite(ctx context.Context, idSite int64) (map[string]models.Access, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]models.Access)
	for key, level := range r.grants {
		if key.idSite == idSite {
			result[key.login] = level
		}
	}
	return result, nil
}

func (r *InMemoryRepository) GetSitesWithAtLeast(ctx context.Context, level models.Access) (map[string][]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]int64)
	for key, granted := range r.grants {
		if granted.AtLeast(level) {
			result[key.login] = append(result[key.login], key.idSite)
		}
	}
	for login := range result {
		sort.Slice(result[login], func(i, j int) bool { return result[login][i] < result[login][j] })
	}
	return result, nil
}

func (r *InMemoryRepository) GetForLogin(ctx context.Context, login string) ([]models.AccessGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.AccessGrant
	for key, level := range r.grants {
		if key.login == login {
			result = append(result, models.AccessGrant{Login: login, IDSite: key.idSite, Access: level})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IDSite < result[j].IDSite })
	return result, nil
}

func (r *InMemoryRepository) DeleteAllForLogin(ctx context.Context, login string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.grants {
		if key.login == login {
			delete(r.grants, key)
		}
	}
	return nil
}
