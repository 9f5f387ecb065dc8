package session

import (
	"sync"

	"github.com/yjleow/wbgt-bot/internal/wbgt"
)

// Store is a concurrency-safe mapping from user id to that user's most
// recent query result. Each user holds at most one result; storing a new one
// atomically replaces the previous. A lookup observes a fully formed result
// or none, never a partial write.
type Store struct {
	mu sync.RWMutex

	// key: user id, value: last successful query result
	data map[int64]wbgt.QueryResult
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		data: make(map[int64]wbgt.QueryResult),
	}
}

// Put stores the result for a user, replacing any previous one.
func (s *Store) Put(userID int64, result wbgt.QueryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = result
}

// Get returns the stored result for a user, if any. The result is read-only
// from the caller's point of view; it is never mutated after Put.
func (s *Store) Get(userID int64) (wbgt.QueryResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.data[userID]
	return result, ok
}
