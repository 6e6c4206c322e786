package source

import (
	"context"
	"sync"
	"time"

	"cyber-dashboard/internal/model"

	"github.com/sirupsen/logrus"
)

// CachedSource serves the last successful fetch of its inner source until the
// TTL expires. Failures are never cached.
type CachedSource struct {
	inner  Source
	ttl    time.Duration
	logger *logrus.Logger
	now    func() time.Time

	mu        sync.Mutex
	records   []model.AttackRecord
	fetchedAt time.Time
}

func NewCachedSource(inner Source, ttl time.Duration, logger *logrus.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (c *CachedSource) Name() string {
	return c.inner.Name()
}

// Inner returns the wrapped source.
func (c *CachedSource) Inner() Source {
	return c.inner
}

func (c *CachedSource) Fetch(ctx context.Context) ([]model.AttackRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.records != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		c.logger.Debugf("Serving %d cached records from %s", len(c.records), c.inner.Name())
		return c.records, nil
	}

	records, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.records = records
	c.fetchedAt = c.now()
	return records, nil
}

// Invalidate drops the cached dataset so the next fetch hits the inner source.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
	c.fetchedAt = time.Time{}
}

// Invalidate drops the cache of src when it is a CachedSource.
func Invalidate(src Source) {
	if c, ok := src.(*CachedSource); ok {
		c.Invalidate()
	}
}
