package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ImageLoader fetches question illustrations from a backing store (e.g., the data directory).
type ImageLoader interface {
	LoadImage(ctx context.Context, name string) ([]byte, error)
}

// ImageCache caches image bytes with TTL so popular questions are not re-read from disk.
// Failed loads are not cached.
type ImageCache struct {
	loader ImageLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedImage
}

type cachedImage struct {
	data      []byte
	expiresAt time.Time
}

func NewImageCache(loader ImageLoader, ttl time.Duration) *ImageCache {
	return &ImageCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedImage),
	}
}

func (c *ImageCache) LoadImage(ctx context.Context, name string) ([]byte, error) {
	if data, ok := c.lookup(name); ok {
		return data, nil
	}

	result, err, _ := c.sf.Do(name, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if data, ok := c.lookup(name); ok {
			return data, nil
		}

		data, err := c.loader.LoadImage(ctx, name)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[name] = cachedImage{
			data:      data,
			expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
		}
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *ImageCache) lookup(name string) ([]byte, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[name]; ok && entry.expiresAt.After(now) {
		return entry.data, true
	}
	return nil, false
}

func (c *ImageCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
