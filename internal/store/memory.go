package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/todays-weather/internal/weather"
)

var (
	// ErrNotFound is returned when no document is cached for a kind.
	ErrNotFound = errors.New("no cached document")
)

// MemoryStore is a concurrency-safe in-memory document cache.
type MemoryStore struct {
	mu sync.RWMutex

	// key: document kind
	data map[weather.Kind]weather.CachedDocument

	// retention configuration
	maxAge time.Duration // documents older than this are evicted (0 = unlimited)
	now    func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
// If maxAge is <= 0, documents are kept until replaced.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[weather.Kind]weather.CachedDocument),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// SaveDocument replaces the cached document for its kind, unless the cached
// one is newer.
func (s *MemoryStore) SaveDocument(doc weather.CachedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.data[doc.Kind]; ok && prev.FetchedAt.After(doc.FetchedAt) {
		return
	}
	s.data[doc.Kind] = doc
	s.evictLocked()
}

// GetLatest returns the cached document for a kind.
func (s *MemoryStore) GetLatest(kind weather.Kind) (weather.CachedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[kind]
	if !ok || s.expired(doc) {
		return weather.CachedDocument{}, ErrNotFound
	}
	return doc, nil
}

// Kinds returns every kind with a live cached document.
func (s *MemoryStore) Kinds() []weather.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var kinds []weather.Kind
	for k, doc := range s.data {
		if !s.expired(doc) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (s *MemoryStore) expired(doc weather.CachedDocument) bool {
	if s.maxAge <= 0 {
		return false
	}
	cutoff := s.now().Add(-s.maxAge)
	return doc.FetchedAt.Before(cutoff)
}

// Enforce retention by age.
func (s *MemoryStore) evictLocked() {
	for k, doc := range s.data {
		if s.expired(doc) {
			delete(s.data, k)
		}
	}
}
