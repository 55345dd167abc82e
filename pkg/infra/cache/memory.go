package cache

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
)

// Default TTLs for GitHub reads: bulk listings change slowly, team data
// churns faster.
const (
	TTLBulkListing = 15 * time.Minute
	TTLTeamData    = 5 * time.Minute
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an in-process TTL cache. Entries are evicted lazily on
// read.
func NewMemory() interfaces.Cache {
	return &memoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (x *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	x.mu.RLock()
	e, ok := x.entries[key]
	x.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if x.now().After(e.expiresAt) {
		x.mu.Lock()
		delete(x.entries, key)
		x.mu.Unlock()
		return nil, false
	}

	return e.data, true
}

func (x *memoryCache) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.entries[key] = entry{
		data:      append([]byte(nil), data...),
		expiresAt: x.now().Add(ttl),
	}

	return nil
}

func (x *memoryCache) Clear(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.entries = make(map[string]entry)

	return nil
}
