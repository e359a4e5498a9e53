// Package resultcache keeps recent photos and batches downloadable for a
// limited time.
package resultcache

import (
	"time"

	"github.com/patrickmn/go-cache"

	"idphoto/internal/domain"
)

const (
	photoPrefix = "photo:"
	batchPrefix = "batch:"
)

// Cache maps generation and batch ids to their results.
type Cache struct {
	c *cache.Cache
}

// New returns a cache whose entries expire after ttl. Expired entries are
// purged every 2*ttl.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

func (c *Cache) PutPhoto(p *domain.GeneratedPhoto) {
	c.c.SetDefault(photoPrefix+p.ID, p)
}

func (c *Cache) Photo(id string) (*domain.GeneratedPhoto, bool) {
	v, ok := c.c.Get(photoPrefix + id)
	if !ok {
		return nil, false
	}
	p, ok := v.(*domain.GeneratedPhoto)
	return p, ok
}

// PutBatch stores the batch and each of its successful photos.
func (c *Cache) PutBatch(r domain.BatchResult) {
	c.c.SetDefault(batchPrefix+r.ID, r)
	for _, o := range r.Succeeded() {
		c.PutPhoto(o.Photo)
	}
}

func (c *Cache) Batch(id string) (domain.BatchResult, bool) {
	v, ok := c.c.Get(batchPrefix + id)
	if !ok {
		return domain.BatchResult{}, false
	}
	r, ok := v.(domain.BatchResult)
	return r, ok
}

// Len returns the number of live entries.
func (c *Cache) Len() int { return c.c.ItemCount() }

// Flush drops everything.
func (c *Cache) Flush() { c.c.Flush() }
