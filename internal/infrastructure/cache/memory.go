package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memEntry
	defaultTTL time.Duration
	sweepEvery time.Duration
	logger     *log.Logger
	now        func() time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewMemory(defaultTTL, sweepEvery time.Duration, logger *log.Logger) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	return &Memory{
		entries:    map[string]memEntry{},
		defaultTTL: defaultTTL,
		sweepEvery: sweepEvery,
		logger:     logger,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the sweeper until ctx is done or Stop is called.
func (m *Memory) Start(ctx context.Context) {
	if m == nil || !m.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(m.done)
		t := time.NewTicker(m.sweepEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-t.C:
				if n := m.Sweep(); n > 0 && m.logger != nil {
					m.logger.Printf("[Cache] Sweep removed=%d remaining=%d", n, m.Len())
				}
			}
		}
	}()
}

// Stop ends the sweeper started by Start and waits for it to exit.
func (m *Memory) Stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	if !m.started.Load() {
		return
	}
	select {
	case <-m.done:
	case <-time.After(time.Second):
	}
}

// Sweep drops every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	if m == nil {
		return 0
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

func (m *Memory) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (m *Memory) set(key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	m.entries[key] = memEntry{data: data, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) GetJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := m.get(key)
	if !ok || len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.set(key, b, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	if prefix == "" {
		return nil
	}
	m.mu.Lock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetIfNotExists(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}
	b, _ := json.Marshal(value)
	m.entries[key] = memEntry{data: b, expiresAt: now.Add(ttl)}
	return true, nil
}
