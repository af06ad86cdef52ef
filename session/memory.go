// session/memory.go
package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It suits a single
// instance and tests; sessions are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewMemoryStore starts a store that sweeps expired sessions every
// interval (10 minutes when interval is 0).
func NewMemoryStore(interval time.Duration) *MemoryStore {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	s := &MemoryStore{
		records: make(map[string]*Record),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go s.sweep(interval)
	return s
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || rec.expired(time.Now()) {
		return nil, ErrNotFound
	}
	return rec.clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec.clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Close stops the sweeper. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	<-s.doneCh
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) sweep(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.removeExpired(time.Now())
		}
	}
}

func (s *MemoryStore) removeExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.expired(now) {
			delete(s.records, id)
		}
	}
}
