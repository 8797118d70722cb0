package tenantcache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultMemorySize is the default maximum number of TTL-bounded items
// held by the in-memory backend.
const DefaultMemorySize = 1000

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero means the entry never expires
}

// MemoryBackend is an in-process cache backend with TTL expiry, LRU
// eviction, and a periodic cleanup goroutine. Entries written with
// SetForever never expire and are exempt from LRU eviction, which keeps
// the permanent existence flags monotonic even under cache pressure.
type MemoryBackend struct {
	mu      sync.Mutex
	items   map[string]memoryItem
	lru     []string // eviction order for TTL-bounded keys only
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewMemoryBackend creates an in-memory backend with the default size limit.
func NewMemoryBackend() *MemoryBackend {
	return NewMemoryBackendWithSize(DefaultMemorySize)
}

// NewMemoryBackendWithSize creates an in-memory backend holding at most
// maxSize TTL-bounded entries.
func NewMemoryBackendWithSize(maxSize int) *MemoryBackend {
	if maxSize <= 0 {
		maxSize = DefaultMemorySize
	}

	b := &MemoryBackend{
		items:   make(map[string]memoryItem),
		lru:     make([]string, 0, maxSize),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go b.cleanup()
	return b
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[key]
	if !ok {
		return nil, false, nil
	}

	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		delete(b.items, key)
		b.removeLRU(key)
		return nil, false, nil
	}

	if !item.expiresAt.IsZero() {
		b.touchLRU(key)
	}
	return item.value, true, nil
}

func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.items[key]; !exists && b.ttlCount() >= b.maxSize && len(b.lru) > 0 {
		evict := b.lru[0]
		b.lru = b.lru[1:]
		delete(b.items, evict)
	}

	b.items[key] = memoryItem{value: value, expiresAt: time.Now().Add(ttl)}
	b.touchLRU(key)
	return nil
}

func (b *MemoryBackend) SetForever(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.removeLRU(key)
	b.items[key] = memoryItem{value: value}
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.items, key)
	b.removeLRU(key)
	return nil
}

// DeleteByPrefix removes every key under prefix, satisfying the
// BulkInvalidator capability.
func (b *MemoryBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key := range b.items {
		if strings.HasPrefix(key, prefix) {
			delete(b.items, key)
			b.removeLRU(key)
		}
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stop)
	<-b.done
	return nil
}

func (b *MemoryBackend) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(b.done)

	for {
		select {
		case <-ticker.C:
			b.removeExpired()
		case <-b.stop:
			return
		}
	}
}

func (b *MemoryBackend) removeExpired() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for key, item := range b.items {
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			delete(b.items, key)
			b.removeLRU(key)
		}
	}
}

// ttlCount is the number of TTL-bounded entries. Callers must hold the lock.
func (b *MemoryBackend) ttlCount() int {
	return len(b.lru)
}

func (b *MemoryBackend) touchLRU(key string) {
	b.removeLRU(key)
	b.lru = append(b.lru, key)
}

func (b *MemoryBackend) removeLRU(key string) {
	for i, k := range b.lru {
		if k == key {
			b.lru = append(b.lru[:i], b.lru[i+1:]...)
			return
		}
	}
}
