package redis

import (
	"context"
	"sync"
	"time"

	"eduquest-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions themselves stay in process; Redis holds a liveness marker per
// session ({namespace}:session:{id} -> activity id) that expires after ttl
// without activity, so other tools can see which quizzes are in flight.
type SessionStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	mu        sync.RWMutex
	sessions  map[string]*app.Session
}

func NewSessionStore(client *redis.Client, namespace string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		sessions:  make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(ctx context.Context, id string, session *app.Session) error {
	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
	return s.client.Set(ctx, s.key(id), session.ActivityID(), s.ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		// best-effort refresh of the liveness marker
		_ = s.client.Expire(ctx, s.key(id), s.ttl).Err()
	}
	return session, ok
}

func (s *SessionStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	_ = s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) key(id string) string {
	return s.namespace + ":session:" + id
}
