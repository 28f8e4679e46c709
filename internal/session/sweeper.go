package session

import (
	"context"
	"log/slog"
	"time"
)

// EvictCallback is called with the key of every session the sweeper removes.
type EvictCallback func(key string)

// Sweep removes sessions idle for longer than idleTTL. Sessions with a turn in
// progress are skipped. It returns the evicted keys.
func (m *MemoryStore) Sweep(idleTTL time.Duration) []string {
	cutoff := m.now().Add(-idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	var evicted []string
	for key, e := range m.entries {
		if !e.gate.TryAcquire(1) {
			continue
		}
		e.mu.Lock()
		idle := e.sess.LastActiveAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(m.entries, key)
			evicted = append(evicted, key)
		}
		e.gate.Release(1)
	}
	return evicted
}

// StartSweeper runs a background goroutine that evicts idle sessions every
// interval until ctx is canceled. The returned channel is closed when the
// goroutine exits.
func (m *MemoryStore) StartSweeper(ctx context.Context, idleTTL, interval time.Duration, onEvict EvictCallback) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		interval = idleTTL / 2
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "idle_ttl", idleTTL)

		for {
			select {
			case <-ticker.C:
				evicted := m.Sweep(idleTTL)
				if len(evicted) == 0 {
					continue
				}
				slog.Info("Session sweeper evicted idle sessions", "count", len(evicted))
				if onEvict != nil {
					for _, key := range evicted {
						onEvict(key)
					}
				}
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
	return done
}
