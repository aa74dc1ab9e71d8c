package store

import (
	"context"
	"sort"
	"sync"
)

// MockFollowStore is an in-memory FollowStore used by tests and by
// deployments that run without Redis.
type MockFollowStore struct {
	mu     sync.Mutex
	counts map[string]int64
	scores map[string]int64
}

// NewMockFollowStore creates an empty in-memory follow store.
func NewMockFollowStore() *MockFollowStore {
	return &MockFollowStore{
		counts: make(map[string]int64),
		scores: make(map[string]int64),
	}
}

func (s *MockFollowStore) GetFollowersCount(ctx context.Context, userID string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, ok := s.counts[userID]
	return count, ok, nil
}

func (s *MockFollowStore) SetFollowersCount(ctx context.Context, userID string, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID] = count
	return nil
}

func (s *MockFollowStore) CondIncrFollowersCount(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.counts[userID]; ok {
		s.counts[userID]++
	}
	return nil
}

func (s *MockFollowStore) CondDecrFollowersCount(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count, ok := s.counts[userID]; ok && count > 0 {
		s.counts[userID]--
	}
	return nil
}

func (s *MockFollowStore) RecordAccess(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[userID]++
	return nil
}

func (s *MockFollowStore) GetTopHotKeys(ctx context.Context, n int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.scores))
	for k := range s.scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if s.scores[keys[i]] != s.scores[keys[j]] {
			return s.scores[keys[i]] > s.scores[keys[j]]
		}
		return keys[i] < keys[j]
	})

	if n >= 0 && int64(len(keys)) > n {
		keys = keys[:n]
	}
	return keys, nil
}

func (s *MockFollowStore) ResetHotKeyScores(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = make(map[string]int64)
	return nil
}

func (s *MockFollowStore) Close() error { return nil }

// Ensure interface is satisfied at compile time.
var _ FollowStore = (*MockFollowStore)(nil)
