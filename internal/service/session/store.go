// Package session keeps the per-user conversation registry. A session never
// receives concurrent turns, so the mutex guards registry membership only,
// not the session's own fields.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/postty/showcase-agent/internal/model/chat"
)

const (
	// DefaultIdleTTL is how long a session may sit untouched before a sweep
	// removes it.
	DefaultIdleTTL = time.Hour
	// DefaultMaxSessions triggers an eager eviction pass at creation time;
	// it is a soft cap, never a hard rejection.
	DefaultMaxSessions = 100
	// DefaultJanitorInterval spaces the background eviction passes.
	DefaultJanitorInterval = 5 * time.Minute
)

// Config tunes the registry. Zero values fall back to the defaults above.
type Config struct {
	IdleTTL         time.Duration
	MaxSessions     int
	JanitorInterval time.Duration
	Clock           func() time.Time
}

// Store is the keyed session registry with idle eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*chat.Session

	clock           func() time.Time
	ttl             time.Duration
	maxSessions     int
	janitorInterval time.Duration
	snapshots       Snapshotter
}

// NewStore builds a registry. snapshots may be nil when persistence is not
// configured.
func NewStore(cfg Config, snapshots Snapshotter) *Store {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = DefaultJanitorInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Store{
		sessions:        make(map[string]*chat.Session),
		clock:           cfg.Clock,
		ttl:             cfg.IdleTTL,
		maxSessions:     cfg.MaxSessions,
		janitorInterval: cfg.JanitorInterval,
		snapshots:       snapshots,
	}
}

// GetOrCreate returns the session for id, creating it when absent. Creation
// at capacity runs an eviction pass first; when every session is still fresh
// the new one is created anyway and the registry transiently exceeds the cap.
func (s *Store) GetOrCreate(ctx context.Context, id string) *chat.Session {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.Touch(now)
		return sess
	}

	if len(s.sessions) >= s.maxSessions {
		evicted := s.evictIdleLocked(now)
		log.Printf("[session] at capacity (%d), evicted %d idle sessions", s.maxSessions, evicted)
	}

	sess := s.restore(ctx, id)
	if sess == nil {
		sess = &chat.Session{ID: id, CreatedAt: now}
	}
	sess.Touch(now)
	s.sessions[id] = sess
	return sess
}

// Get returns the session without creating one.
func (s *Store) Get(id string) (*chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Remove drops a session entirely.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, id); err != nil {
			log.Printf("[session] snapshot delete failed for %s: %v", id, err)
		}
	}
}

// Len reports the current session count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle removes every session idle longer than the TTL relative to now
// and returns how many were dropped.
func (s *Store) EvictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictIdleLocked(now)
}

func (s *Store) evictIdleLocked(now time.Time) int {
	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastUsedAt) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Save persists a snapshot of the session when a snapshotter is configured.
// Failures are logged only; persistence never blocks a reply.
func (s *Store) Save(ctx context.Context, sess *chat.Session) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, sess, s.ttl); err != nil {
		log.Printf("[session] snapshot save failed for %s: %v", sess.ID, err)
	}
}

func (s *Store) restore(ctx context.Context, id string) *chat.Session {
	if s.snapshots == nil {
		return nil
	}
	sess, err := s.snapshots.Load(ctx, id)
	if err != nil {
		log.Printf("[session] snapshot restore failed for %s: %v", id, err)
		return nil
	}
	if sess != nil {
		log.Printf("[session] restored session %s from snapshot", id)
	}
	return sess
}

// StartJanitor launches the periodic eviction sweep, fully decoupled from
// request traffic. It returns immediately; the sweep stops when ctx ends.
func (s *Store) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.EvictIdle(s.clock()); n > 0 {
					log.Printf("[session] janitor evicted %d idle sessions", n)
				}
			}
		}
	}()
}
