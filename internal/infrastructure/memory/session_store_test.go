package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

func newTestStore(ttl time.Duration) *SessionStore {
	return NewSessionStore(ttl, slog.New(slog.DiscardHandler))
}

func TestSessionStore_MutateCreatesSession(t *testing.T) {
	st := newTestStore(0)
	ctx := context.Background()

	s, err := st.Mutate(ctx, "sess-1", func(s *model.Session) error {
		s.AppendCustomerTurn("hello", time.Now())
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", s.ID)
	assert.True(t, s.State.Equal(valueobject.StateInitial))
	assert.Len(t, s.History, 1)
	assert.Equal(t, 1, st.Len())
}

func TestSessionStore_FailedMutationDiscardsChanges(t *testing.T) {
	st := newTestStore(0)
	ctx := context.Background()

	_, err := st.Mutate(ctx, "sess-1", func(s *model.Session) error {
		s.AppendCustomerTurn("first", time.Now())
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("handler blew up")
	_, err = st.Mutate(ctx, "sess-1", func(s *model.Session) error {
		s.AppendCustomerTurn("second", time.Now())
		s.State = valueobject.StateUnderwriting
		return boom
	})
	require.ErrorIs(t, err, boom)

	s, err := st.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, s.History, 1)
	assert.True(t, s.State.Equal(valueobject.StateInitial))
}

func TestSessionStore_MutateExistingUnknownSession(t *testing.T) {
	st := newTestStore(0)

	_, err := st.MutateExisting(context.Background(), "ghost", func(s *model.Session) error {
		return nil
	})
	assert.ErrorIs(t, err, port.ErrSessionNotFound)
}

func TestSessionStore_GetReturnsSnapshot(t *testing.T) {
	st := newTestStore(0)
	ctx := context.Background()

	_, err := st.Mutate(ctx, "sess-1", func(s *model.Session) error { return nil })
	require.NoError(t, err)

	snap, err := st.Get(ctx, "sess-1")
	require.NoError(t, err)
	snap.AppendCustomerTurn("tamper", time.Now())

	fresh, err := st.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, fresh.History)
}

func TestSessionStore_Delete(t *testing.T) {
	st := newTestStore(0)
	ctx := context.Background()

	_, err := st.Mutate(ctx, "sess-1", func(s *model.Session) error { return nil })
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, "sess-1"))
	_, err = st.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, port.ErrSessionNotFound)

	// Idempotent.
	assert.NoError(t, st.Delete(ctx, "sess-1"))
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	st := newTestStore(30 * time.Minute).WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})
	ctx := context.Background()

	_, err := st.Mutate(ctx, "sess-1", func(s *model.Session) error { return nil })
	require.NoError(t, err)

	mu.Lock()
	current = current.Add(31 * time.Minute)
	mu.Unlock()

	_, err = st.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, port.ErrSessionNotFound)

	_, err = st.MutateExisting(ctx, "sess-1", func(s *model.Session) error { return nil })
	assert.ErrorIs(t, err, port.ErrSessionNotFound)

	st.evictExpired()
	assert.Equal(t, 0, st.Len())
}

func TestSessionStore_ConcurrentMutationsSerialise(t *testing.T) {
	st := newTestStore(0)
	ctx := context.Background()

	const writers = 16
	const turnsEach = 10

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < turnsEach; j++ {
				_, err := st.Mutate(ctx, "sess-1", func(s *model.Session) error {
					s.AppendCustomerTurn("ping", time.Now())
					return nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	s, err := st.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, s.History, writers*turnsEach)
}
