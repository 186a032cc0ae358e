package store

import (
	"sync"
	"time"

	"github.com/AngelCh415/adsdash/internal/metrics"
	"github.com/AngelCh415/adsdash/internal/models"
)

// MemoryStore keeps the raw record sequence of one dashboard session.
// Replace swaps the whole sequence; readers always get copies.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.AdRecord
	version uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: []models.AdRecord{}}
}

// Replace installs a new sequence and returns its version. The slice is
// copied so later caller mutations cannot leak in.
func (s *MemoryStore) Replace(records []models.AdRecord) uint64 {
	cp := make([]models.AdRecord, len(records))
	copy(cp, records)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = cp
	s.version++
	return s.version
}

func (s *MemoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) All() []models.AdRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AdRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Query returns the records in [from, to] that also satisfy f (nil keeps all).
func (s *MemoryStore) Query(from, to time.Time, f func(models.AdRecord) bool) []models.AdRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in := metrics.FilterByDateRange(s.records, from, to)
	if f == nil {
		return in
	}
	out := in[:0]
	for _, r := range in {
		if f(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *MemoryStore) Bounds() (models.DateBounds, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return metrics.Bounds(s.records)
}
