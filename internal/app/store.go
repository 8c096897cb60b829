package app

import (
	"context"
	"encoding/json"
	"fmt"

	"eduquest-service/internal/domain"
)

// KV is the durable key/value backend behind Store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store persists the learner profile and the activity list as two JSON
// documents scoped by a namespace: {ns}-user and {ns}-activities.
type Store struct {
	kv        KV
	namespace string
}

func NewStore(kv KV, namespace string) *Store {
	if namespace == "" {
		namespace = "eduquest"
	}
	return &Store{kv: kv, namespace: namespace}
}

func (s *Store) userKey() string       { return s.namespace + "-user" }
func (s *Store) activitiesKey() string { return s.namespace + "-activities" }

// LoadUser returns ErrNoProfile when nothing is stored.
func (s *Store) LoadUser(ctx context.Context) (domain.User, error) {
	var u domain.User
	ok, err := s.load(ctx, s.userKey(), &u)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrNoProfile
	}
	return u, nil
}

func (s *Store) SaveUser(ctx context.Context, u domain.User) error {
	return s.save(ctx, s.userKey(), u)
}

// LoadActivities returns nil when no activity list is stored yet.
func (s *Store) LoadActivities(ctx context.Context) ([]domain.Activity, error) {
	var activities []domain.Activity
	if _, err := s.load(ctx, s.activitiesKey(), &activities); err != nil {
		return nil, err
	}
	for i := range activities {
		if activities[i].UserAnswers == nil {
			activities[i].UserAnswers = map[int]string{}
		}
	}
	return activities, nil
}

func (s *Store) SaveActivities(ctx context.Context, activities []domain.Activity) error {
	return s.save(ctx, s.activitiesKey(), activities)
}

// Clear removes the profile and the activity list.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.userKey()); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	if err := s.kv.Delete(ctx, s.activitiesKey()); err != nil {
		return fmt.Errorf("clear activities: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Put(ctx, key, raw)
}
