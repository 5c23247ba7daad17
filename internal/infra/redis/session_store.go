package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"pdd-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Session state lives in a local map; runs are not meant to survive restarts.
//   - Every lookup refreshes a per-user presence key with TTL so other instances and
//     operators can see who is actively taking a test.
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

func (s *SessionStore) GetOrCreate(userID string) *app.Session {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	if !ok {
		session = app.NewSession(userID)
		s.sessions[userID] = session
	}
	s.mu.Unlock()

	s.touch(userID)
	return session
}

func (s *SessionStore) Get(userID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		s.touch(userID)
	}
	return session, ok
}

// Active counts users whose presence key has not expired yet.
func (s *SessionStore) Active(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// best-effort liveness marker
func (s *SessionStore) touch(userID string) {
	if err := s.client.Set(context.Background(), s.key(userID), "1", s.ttl).Err(); err != nil {
		log.Printf("redis presence update failed: %v", err)
	}
}

const keyPrefix = "pdd:session:"

func (s *SessionStore) key(userID string) string {
	return keyPrefix + userID
}
