package booking

import (
	"context"
	"sync"

	"github.com/iliyamo/building-reservation/internal/model"
)

// Cache holds an in-memory view of the full reservation set so that
// admission checks and listings do not hit the store on every call.  It is
// read-shared; the only mutation is Refresh, which replaces the whole
// snapshot.  The cache is never authoritative for an admission commit: the
// engine re-reads it under its own lock and the store re-validates the
// constraints at write time.
type Cache struct {
	store Store

	mu    sync.RWMutex
	items []model.Reservation
}

// NewCache returns an empty cache bound to the given store.  Callers
// should Refresh once at startup to populate it.
func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// Refresh replaces the cached set with a full reload from the store.
// There is no incremental update path.  When the store fails the previous
// snapshot is kept intact and the failure is returned wrapped in a
// StoreError.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.store.ListAll(ctx)
	if err != nil {
		return storeError("list", err)
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// All returns a copy of the current snapshot.  Callers may mutate the
// returned slice freely; insertion order carries no meaning.
func (c *Cache) All() []model.Reservation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Reservation, len(c.items))
	copy(out, c.items)
	return out
}
