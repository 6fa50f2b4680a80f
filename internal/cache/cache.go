// Package cache holds the engine's process-lifetime key/value stores.
// Entries never expire and are never evicted.
package cache

import (
	"sync"

	"readdit/internal/metrics"
	"readdit/pkg/models"
)

// Store is a read-through map guarded by a RWMutex.
type Store[V any] struct {
	name string
	mu   sync.RWMutex
	m    map[string]V
}

func NewStore[V any](name string) *Store[V] {
	return &Store[V]{name: name, m: make(map[string]V)}
}

func (s *Store[V]) Name() string { return s.name }

// Get returns the cached value for key.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok
}

// Set stores v under key, replacing any previous value.
func (s *Store[V]) Set(key string, v V) {
	s.mu.Lock()
	s.m[key] = v
	n := len(s.m)
	s.mu.Unlock()
	metrics.CacheEntries.WithLabelValues(s.name).Set(float64(n))
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// GetOrLoad returns the cached value for key, or calls load on a miss.
// The loaded value is stored only when load reports it cacheable. The
// boolean is true for a hit or a cacheable load.
//
// Concurrent misses on the same key are not coalesced: each caller runs
// load and the last write wins.
func (s *Store[V]) GetOrLoad(key string, load func() (V, bool)) (V, bool) {
	if v, ok := s.Get(key); ok {
		metrics.CacheLookups.WithLabelValues(s.name, "hit").Inc()
		return v, true
	}
	metrics.CacheLookups.WithLabelValues(s.name, "miss").Inc()

	v, cacheable := load()
	if cacheable {
		s.Set(key, v)
	}
	return v, cacheable
}

// Set groups the three stores owned by the recommendation engine.
type Set struct {
	Works     *Store[models.WorkDetails]
	Languages *Store[models.LanguageSet]
	Posts     *Store[[]models.CommunityPost]
}

// New creates an empty Set.
func New() *Set {
	return &Set{
		Works:     NewStore[models.WorkDetails]("work_details"),
		Languages: NewStore[models.LanguageSet]("edition_languages"),
		Posts:     NewStore[[]models.CommunityPost]("community_posts"),
	}
}
