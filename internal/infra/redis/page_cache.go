// Package redis provides Redis-backed infrastructure: a question page cache
// and a coin wallet.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/source"
)

// PageCache decorates a PageLoader with a Redis cache. Pages are stored as
// JSON arrays under questions:{category}:{page}:{size}; misses fall through
// to the inner loader, with concurrent misses for the same page collapsed
// into one load.
type PageCache struct {
	client *redis.Client
	inner  source.PageLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPageCache(client *redis.Client, inner source.PageLoader, ttl time.Duration) *PageCache {
	return &PageCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *PageCache) LoadPage(ctx context.Context, categoryID string, page, pageSize int) ([]domain.Question, error) {
	key := c.key(categoryID, page, pageSize)

	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var questions []domain.Question
		if err := json.Unmarshal(cached, &questions); err == nil {
			return questions, nil
		}
		// Unreadable entry; drop it and reload.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var questions []domain.Question
			if err := json.Unmarshal(cached, &questions); err == nil {
				return questions, nil
			}
		}

		questions, err := c.inner.LoadPage(ctx, categoryID, page, pageSize)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			// Cache write is best-effort.
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *PageCache) key(categoryID string, page, pageSize int) string {
	return fmt.Sprintf("questions:%s:%d:%d", categoryID, page, pageSize)
}

func (c *PageCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
