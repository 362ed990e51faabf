package registry

import "sync"

// syncCache is a small RWMutex-guarded map. Entries are only ever added,
// never replaced or removed; a racing recompute stores an identical value.
type syncCache struct {
	mu *sync.RWMutex
	m  map[string]*ModelFields
}

func newSyncCache() syncCache {
	return syncCache{mu: new(sync.RWMutex), m: make(map[string]*ModelFields)}
}

func (c syncCache) load(key string) (*ModelFields, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mf, ok := c.m[key]
	return mf, ok
}

func (c syncCache) store(key string, mf *ModelFields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[key]; !ok {
		c.m[key] = mf
	}
}
