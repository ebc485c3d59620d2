package rate

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const memoryShards = 32

type memoryBucket struct {
	count       int64
	windowStart time.Time
	window      time.Duration
}

type memoryShard struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests. Buckets are sharded by key so concurrent attempts on different
// clients never contend on one lock.
type MemoryStore struct {
	shards [memoryShards]*memoryShard
	now    func() time.Time
}

// NewMemoryStore creates an empty in-process counter store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for i := range s.shards {
		s.shards[i] = &memoryShard{buckets: make(map[string]*memoryBucket)}
	}
	return s
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%memoryShards]
}

// Increment advances the counter for key, starting a fresh window when the
// current one has elapsed.
func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := s.now()
	b, ok := sh.buckets[key]
	if !ok || b.expired(now) {
		sh.buckets[key] = &memoryBucket{count: 1, windowStart: now, window: window}
		return 1, nil
	}

	b.count++
	return b.count, nil
}

// Get returns the live counter for key; elapsed windows read as zero.
func (s *MemoryStore) Get(_ context.Context, key string) (int64, error) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	b, ok := sh.buckets[key]
	if !ok || b.expired(s.now()) {
		return 0, nil
	}
	return b.count, nil
}

// Reset removes the given keys.
func (s *MemoryStore) Reset(_ context.Context, keys ...string) error {
	for _, key := range keys {
		sh := s.shard(key)
		sh.mu.Lock()
		delete(sh.buckets, key)
		sh.mu.Unlock()
	}
	return nil
}

func (b *memoryBucket) expired(now time.Time) bool {
	return now.Sub(b.windowStart) >= b.window
}
