package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"eduquest-service/internal/content"
	"eduquest-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionCache keeps supplied question sets per activity with a TTL so a
// fresh dashboard does not trigger another generation round-trip.
type QuestionCache struct {
	next  content.Supplier
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(next content.Supplier, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedQuestions),
	}
}

func (c *QuestionCache) Questions(ctx context.Context, req content.Request) ([]domain.Question, error) {
	if qs, ok := c.lookup(req.ActivityID); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(req.ActivityID, func() (interface{}, error) {
		if qs, ok := c.lookup(req.ActivityID); ok {
			return qs, nil
		}

		qs, err := c.next.Questions(ctx, req)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 && len(qs) > 0 {
			c.mu.Lock()
			c.cache[req.ActivityID] = cachedQuestions{
				questions: cloneQuestions(qs),
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
			c.mu.Unlock()
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (c *QuestionCache) lookup(activityID string) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[activityID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return cloneQuestions(entry.questions), true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	// up to 10% jitter spreads expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
