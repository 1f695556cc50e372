// Package cache holds the in-process caches used for session checks,
// default income categories and open drawer sessions.
package cache

import (
	"context"
	"sync"
	"time"

	applog "mykharche/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans every registered cache
type Manager struct {
	mu     sync.Mutex
	caches map[string]Cleaner
	logger *applog.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(logger *applog.Logger) *Manager {
	return &Manager{
		caches: make(map[string]Cleaner),
		logger: logger.WithComponent(applog.ComponentCache),
	}
}

// Register adds a named cache to the cleanup cycle
func (m *Manager) Register(name string, cache Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = cache
}

// CleanAll runs one cleanup pass and returns the number of evicted entries
func (m *Manager) CleanAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for name, c := range m.caches {
		if n := c.CleanExpired(); n > 0 {
			m.logger.Debug("Expired cache entries removed", "cache", name, "count", n)
			total += n
		}
	}
	return total
}

// StartCleanup begins periodic cleanup until Stop is called or ctx ends
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.CleanAll()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the cleanup goroutine and waits for it to exit
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}
