package usecase

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/lead-dashboard/internal/entity"
)

type cachedSnapshot struct {
	leads  []entity.Lead
	readAt time.Time
}

// SnapshotCache holds the latest normalized lead set per collection. Each
// Apply swaps the whole set; readers never see a partial update.
type SnapshotCache struct {
	mu          sync.RWMutex
	collections map[string]cachedSnapshot
	onApply     func(collection string, size int)
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{collections: make(map[string]cachedSnapshot)}
}

// OnApply registers a hook called after every snapshot swap.
func (c *SnapshotCache) OnApply(fn func(collection string, size int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onApply = fn
}

func (c *SnapshotCache) Apply(coll entity.Collection, snap entity.Snapshot) {
	leads := NormalizeSnapshot(snap, coll)
	readAt := snap.ReadTime
	if readAt.IsZero() {
		readAt = time.Now()
	}

	c.mu.Lock()
	c.collections[coll.Name] = cachedSnapshot{leads: leads, readAt: readAt}
	hook := c.onApply
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"collection": coll.Name,
		"leads":      len(leads),
	}).Debug("snapshot applied")

	if hook != nil {
		hook(coll.Name, len(leads))
	}
}

// Leads returns the current set. The slice is shared; callers must not mutate it.
func (c *SnapshotCache) Leads(collection string) ([]entity.Lead, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.collections[collection]
	return s.leads, s.readAt, ok
}

func (c *SnapshotCache) Ready(collection string) bool {
	_, _, ok := c.Leads(collection)
	return ok
}
