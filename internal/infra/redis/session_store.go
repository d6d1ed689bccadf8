package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DevPanchal02/dental-edge-sub000/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions still live in a local map; an attempt is driven by the process that
//     holds its websocket.
//   - Redis marks session liveness so other instances and operators can see which
//     attempts are open. The marker expires on its own if the process dies.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(key string, create func() *app.Session) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[key]; ok {
		// refresh liveness while viewers keep arriving
		_ = s.client.Expire(context.Background(), s.key(key), s.ttl).Err()
		return session, false
	}
	session := create()
	s.sessions[key] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(key), "1", s.ttl).Err()
	return session, true
}

func (s *SessionStore) Get(key string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}

func (s *SessionStore) DeleteIfEmpty(key string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok || !session.IsEmpty() {
		return nil, false
	}
	delete(s.sessions, key)
	_ = s.client.Del(context.Background(), s.key(key)).Err()
	return session, true
}

func (s *SessionStore) Drain() []*app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*app.Session, 0, len(s.sessions))
	keys := make([]string, 0, len(s.sessions))
	for key, session := range s.sessions {
		out = append(out, session)
		keys = append(keys, s.key(key))
		delete(s.sessions, key)
	}
	if len(keys) > 0 {
		_ = s.client.Del(context.Background(), keys...).Err()
	}
	return out
}

func (s *SessionStore) key(key string) string {
	return "quiz:session:" + key
}
