// Package session keeps per-visitor conversation state in memory.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ashureev/leadrelay/internal/domain"
	"golang.org/x/sync/semaphore"
)

// DefaultHistoryLimit is the number of turns retained per session.
const DefaultHistoryLimit = 30

// Store defines the operations the conversation pipeline needs from session state.
type Store interface {
	// Acquire returns the session for key, creating it if needed, and holds its
	// turn gate until the handle is released. Turns of one session never overlap.
	Acquire(ctx context.Context, key string) (*Handle, error)

	// Snapshot returns a copy of the session without waiting for the turn gate.
	Snapshot(key string) (domain.Session, bool)

	// Len returns the number of live sessions.
	Len() int
}

// entry pairs a session with its synchronization. gate serializes whole turns;
// mu guards sess for short in-memory reads and writes only.
type entry struct {
	gate *semaphore.Weighted
	mu   sync.Mutex
	sess domain.Session
}

// MemoryStore implements Store with a process-local map.
type MemoryStore struct {
	mu           sync.RWMutex
	entries      map[string]*entry
	historyLimit int
	now          func() time.Time
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store that keeps at most historyLimit turns per session.
func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &MemoryStore{
		entries:      make(map[string]*entry),
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

func (m *MemoryStore) getOrCreate(key string) *entry {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		return e
	}
	now := m.now()
	e = &entry{
		gate: semaphore.NewWeighted(1),
		sess: domain.Session{Key: key, CreatedAt: now, LastActiveAt: now},
	}
	m.entries[key] = e
	return e
}

// Acquire implements Store.
func (m *MemoryStore) Acquire(ctx context.Context, key string) (*Handle, error) {
	for {
		e := m.getOrCreate(key)
		if err := e.gate.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("acquire session %q: %w", key, err)
		}

		// The sweeper may have evicted the entry while we were queued.
		m.mu.RLock()
		current := m.entries[key]
		m.mu.RUnlock()
		if current == e {
			return &Handle{store: m, e: e}, nil
		}
		e.gate.Release(1)
	}
}

// Snapshot implements Store.
func (m *MemoryStore) Snapshot(key string) (domain.Session, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return domain.Session{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone(), true
}

// Len implements Store.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Handle is exclusive access to one session for the duration of a turn.
type Handle struct {
	store    *MemoryStore
	e        *entry
	released bool
}

// Session returns a copy of the current session state.
func (h *Handle) Session() domain.Session {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return h.e.sess.Clone()
}

// UpdateProfile applies fn to the stored profile.
func (h *Handle) UpdateProfile(fn func(p *domain.Profile)) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	fn(&h.e.sess.Profile)
}

// MergeLatches sets any latch that is true in l. Latches are never cleared.
func (h *Handle) MergeLatches(l domain.AlertLatches) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	h.e.sess.Latches.AlertSent = h.e.sess.Latches.AlertSent || l.AlertSent
	h.e.sess.Latches.HighPriorityAlertSent = h.e.sess.Latches.HighPriorityAlertSent || l.HighPriorityAlertSent
}

// Append adds turns in order and truncates the history to the store's limit.
func (h *Handle) Append(turns ...domain.Turn) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()

	s := &h.e.sess
	s.Turns = append(s.Turns, turns...)
	if over := len(s.Turns) - h.store.historyLimit; over > 0 {
		// Copy so the dropped prefix is not kept alive by the backing array.
		s.Turns = append([]domain.Turn(nil), s.Turns[over:]...)
	}
	s.LastActiveAt = h.store.now()
}

// Release ends the turn. It is safe to call more than once.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.e.gate.Release(1)
}
