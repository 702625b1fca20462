package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
	tags      []string
}

// MemoryStore is the single process fallback when no redis is configured
type MemoryStore struct {
	entries *lru.Cache
	mutex   sync.Mutex
	tagged  map[string]map[string]struct{}
	now     func() time.Time
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	store := &MemoryStore{
		tagged: make(map[string]map[string]struct{}),
		now:    time.Now,
	}

	entries, err := lru.NewWithEvict(size, store.onEvict)

	if err != nil {
		return nil, err
	}

	store.entries = entries

	return store, nil
}

// keeps the tag index in sync with lru evictions
func (s *MemoryStore) onEvict(key interface{}, value interface{}) {
	entry := value.(*memoryEntry)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, tag := range entry.tags {
		delete(s.tagged[tag], key.(string))
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := s.entries.Get(key)

	if !ok {
		return nil, false, nil
	}

	entry := value.(*memoryEntry)

	if s.now().After(entry.expiresAt) {
		s.entries.Remove(key)
		return nil, false, nil
	}

	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	s.entries.Add(key, &memoryEntry{
		value:     value,
		expiresAt: s.now().Add(ttl),
		tags:      tags,
	})

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, tag := range tags {
		keys, ok := s.tagged[tag]

		if !ok {
			keys = make(map[string]struct{})
			s.tagged[tag] = keys
		}

		keys[key] = struct{}{}
	}

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

func (s *MemoryStore) InvalidateTag(_ context.Context, tag string) (int, error) {
	s.mutex.Lock()
	keys := s.tagged[tag]
	delete(s.tagged, tag)
	s.mutex.Unlock()

	removed := 0

	for key := range keys {
		if s.entries.Remove(key) {
			removed++
		}
	}

	return removed, nil
}

func (s *MemoryStore) Close() error {
	s.entries.Purge()
	return nil
}
