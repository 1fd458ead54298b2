package inventory

import (
	"sync"
	"time"

	"github.com/evanmh/stocktrack/internal/model"
)

// activeCache holds recently read active records for a short TTL. It is
// owned by the Service, which invalidates it after every successful
// mutation; nothing else shares it.
type activeCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	byID map[string]cacheEntry
	list []model.StockRecord
	// listExp is zero when no list is cached.
	listExp time.Time
}

type cacheEntry struct {
	record model.StockRecord
	exp    time.Time
}

func newActiveCache(ttl time.Duration) *activeCache {
	return &activeCache{
		ttl:  ttl,
		now:  time.Now,
		byID: make(map[string]cacheEntry),
	}
}

func (c *activeCache) get(jaID string) (*model.StockRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.byID[jaID]
	if !ok || c.now().After(e.exp) {
		return nil, false
	}
	r := e.record
	return &r, true
}

func (c *activeCache) put(r *model.StockRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[r.JAID] = cacheEntry{record: *r, exp: c.now().Add(c.ttl)}
}

func (c *activeCache) getList() ([]model.StockRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listExp.IsZero() || c.now().After(c.listExp) {
		return nil, false
	}
	out := make([]model.StockRecord, len(c.list))
	copy(out, c.list)
	return out, true
}

func (c *activeCache) putList(records []model.StockRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.list = make([]model.StockRecord, len(records))
	copy(c.list, records)
	c.listExp = c.now().Add(c.ttl)
}

// invalidate drops everything. Called after every successful mutation so
// reads never serve pre-mutation state beyond the storage snapshot.
func (c *activeCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byID = make(map[string]cacheEntry)
	c.list = nil
	c.listExp = time.Time{}
}
