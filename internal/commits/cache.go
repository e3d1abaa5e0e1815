package commits

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// RepoCache holds resolved repositories keyed by owner/repo.
type RepoCache struct {
	mu     sync.RWMutex
	repos  map[string]*Repo
	flight singleflight.Group
}

// NewRepoCache returns an empty cache.
func NewRepoCache() *RepoCache {
	return &RepoCache{repos: make(map[string]*Repo)}
}

// Get returns the cached repository for full, calling load on a miss.
// Concurrent misses for the same key share a single load. Errors are not
// cached.
func (c *RepoCache) Get(ctx context.Context, full string, load func(context.Context, string) (*Repo, error)) (*Repo, error) {
	c.mu.RLock()
	repo, ok := c.repos[full]
	c.mu.RUnlock()
	if ok {
		return repo, nil
	}

	v, err, _ := c.flight.Do(full, func() (any, error) {
		repo, err := load(ctx, full)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.repos[full] = repo
		c.mu.Unlock()
		return repo, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Repo), nil
}

// Len returns the number of cached repositories.
func (c *RepoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.repos)
}
