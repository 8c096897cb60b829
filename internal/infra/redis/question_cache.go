package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"eduquest-service/internal/content"
	"eduquest-service/internal/domain"
	"eduquest-service/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionCache stores supplied question sets as JSON under
// {namespace}:questions:{activityID} and falls back to the next supplier on a miss.
type QuestionCache struct {
	client    *redis.Client
	next      content.Supplier
	namespace string
	ttl       time.Duration
	log       *logger.Logger
	sf        singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionCache(client *redis.Client, next content.Supplier, namespace string, ttl time.Duration, log *logger.Logger) *QuestionCache {
	if log == nil {
		log = logger.Nop()
	}
	return &QuestionCache{
		client:    client,
		next:      next,
		namespace: namespace,
		ttl:       ttl,
		log:       log.With("component", "question_cache"),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Questions(ctx context.Context, req content.Request) ([]domain.Question, error) {
	if qs, ok := c.lookup(ctx, req.ActivityID); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(req.ActivityID, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if qs, ok := c.lookup(ctx, req.ActivityID); ok {
			return qs, nil
		}

		qs, err := c.next.Questions(ctx, req)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 && len(qs) > 0 {
			c.store(ctx, req.ActivityID, qs)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) lookup(ctx context.Context, activityID string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, c.key(activityID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("question cache read failed", "activity", activityID, "error", err)
		}
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(raw, &qs); err != nil || len(qs) == 0 {
		c.log.Warn("dropping unreadable cached questions", "activity", activityID, "error", err)
		_ = c.client.Del(ctx, c.key(activityID)).Err()
		return nil, false
	}
	return qs, true
}

// store is best effort; a failed write only costs a later regeneration.
func (c *QuestionCache) store(ctx context.Context, activityID string, qs []domain.Question) {
	raw, err := json.Marshal(qs)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(activityID), raw, c.ttlWithJitter()).Err(); err != nil {
		c.log.Warn("question cache write failed", "activity", activityID, "error", err)
	}
}

func (c *QuestionCache) key(activityID string) string {
	return c.namespace + ":questions:" + activityID
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
