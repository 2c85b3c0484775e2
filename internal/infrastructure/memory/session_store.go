// Package memory provides the in-process adapters: the session store that
// owns conversation state and a document sink for single-node deployments.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/pkg/observability"
)

type sessionEntry struct {
	mu        sync.Mutex
	session   *model.Session
	expiresAt time.Time
}

// SessionStore keeps sessions in memory with copy-on-write mutation: the
// mutation callback runs on a private clone under a per-session lock, and
// the clone replaces the stored session only when the callback succeeds.
// Sessions idle past the TTL are evicted by the janitor.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry

	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionStore creates a store. A zero TTL disables expiry.
func NewSessionStore(ttl time.Duration, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		entries: make(map[string]*sessionEntry),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the store's clock. Intended for tests.
func (st *SessionStore) WithClock(now func() time.Time) *SessionStore {
	st.now = now
	return st
}

// Mutate applies fn to the session, creating it when absent.
func (st *SessionStore) Mutate(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error) {
	return st.mutate(ctx, id, true, fn)
}

// MutateExisting applies fn to an existing session, or returns
// port.ErrSessionNotFound.
func (st *SessionStore) MutateExisting(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error) {
	return st.mutate(ctx, id, false, fn)
}

func (st *SessionStore) mutate(ctx context.Context, id string, create bool, fn func(*model.Session) error) (*model.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry, err := st.entry(id, create)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.session == nil {
		// Evicted between lookup and lock.
		if !create {
			return nil, port.ErrSessionNotFound
		}
		entry.session = model.NewSession(id, st.now())
	}

	working := entry.session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	entry.session = working
	if st.ttl > 0 {
		entry.expiresAt = st.now().Add(st.ttl)
	}
	return working.Clone(), nil
}

func (st *SessionStore) entry(id string, create bool) (*sessionEntry, error) {
	now := st.now()

	st.mu.RLock()
	entry, ok := st.entries[id]
	st.mu.RUnlock()
	if ok && !st.expired(entry, now) {
		return entry, nil
	}

	if !create {
		return nil, port.ErrSessionNotFound
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if entry, ok := st.entries[id]; ok && !st.expired(entry, now) {
		return entry, nil
	}

	entry = &sessionEntry{session: model.NewSession(id, now)}
	if st.ttl > 0 {
		entry.expiresAt = now.Add(st.ttl)
	}
	st.entries[id] = entry
	observability.ActiveSessions.Set(float64(len(st.entries)))
	return entry, nil
}

func (st *SessionStore) expired(e *sessionEntry, now time.Time) bool {
	return st.ttl > 0 && !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Get returns a read-only snapshot of the session.
func (st *SessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st.mu.RLock()
	entry, ok := st.entries[id]
	st.mu.RUnlock()
	if !ok || st.expired(entry, st.now()) {
		return nil, port.ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.session == nil {
		return nil, port.ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

// Delete removes the session. Deleting an absent session is a no-op.
func (st *SessionStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.entries, id)
	observability.ActiveSessions.Set(float64(len(st.entries)))
	return nil
}

// Len reports the number of sessions currently held.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}

// StartJanitor evicts expired sessions every interval until ctx is
// cancelled. It is a no-op when the store has no TTL.
func (st *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.evictExpired()
			}
		}
	}()
}

func (st *SessionStore) evictExpired() {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()
	evicted := 0
	for id, entry := range st.entries {
		if st.expired(entry, now) {
			delete(st.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		observability.ActiveSessions.Set(float64(len(st.entries)))
		st.logger.Info("evicted expired sessions", slog.Int("count", evicted))
	}
}
