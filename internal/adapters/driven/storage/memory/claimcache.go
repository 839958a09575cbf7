package memory

import (
	"container/list"
	"sync"

	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

// Ensure ClaimCache implements the interface.
var _ driven.ClaimCache = (*ClaimCache)(nil)

// ClaimCache is an in-memory implementation of driven.ClaimCache.
// Entries are kept in creation order; when the capacity is reached the oldest
// claim is evicted before a new one is inserted.
type ClaimCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
	onEvict  func(identity string)
}

// NewClaimCache creates a claim cache holding at most capacity entries.
// A capacity below one means unbounded.
func NewClaimCache(capacity int) *ClaimCache {
	return &ClaimCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// OnEvict registers a callback invoked (outside the lock) for every evicted identity.
func (c *ClaimCache) OnEvict(fn func(identity string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// TryClaim inserts identity if it is not claimed yet.
func (c *ClaimCache) TryClaim(identity string) bool {
	c.mu.Lock()
	if _, ok := c.entries[identity]; ok {
		c.mu.Unlock()
		return false
	}

	var evicted []string
	for c.capacity > 0 && c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		key := oldest.Value.(string)
		c.order.Remove(oldest)
		delete(c.entries, key)
		evicted = append(evicted, key)
	}
	c.entries[identity] = c.order.PushBack(identity)
	onEvict := c.onEvict
	c.mu.Unlock()

	for _, key := range evicted {
		// An eviction means a file has been claimed for longer than the cache can hold
		// claims, i.e. the pipeline is stuck somewhere.
		logger.Warn("claim cache full (capacity %d): evicted claim for %s", c.capacity, key)
		if onEvict != nil {
			onEvict(key)
		}
	}
	return true
}

// Release removes identity. It is a no-op for identities that are not claimed.
func (c *ClaimCache) Release(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[identity]; ok {
		c.order.Remove(elem)
		delete(c.entries, identity)
	}
}

// Claimed returns the claimed identities, oldest first.
func (c *ClaimCache) Claimed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(string))
	}
	return out
}

// Len returns the number of claimed identities.
func (c *ClaimCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes every claim.
func (c *ClaimCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}
