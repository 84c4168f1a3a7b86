package collect

import "sync"

// DedupeSet tracks publication numbers already claimed during a run so a
// patent surfacing under several keywords is fetched and persisted once.
// It is safe for concurrent use.
type DedupeSet struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

// NewDedupeSet creates an empty set.
func NewDedupeSet() *DedupeSet {
	return &DedupeSet{claimed: make(map[string]struct{})}
}

// TryClaim claims number for the caller. It returns true exactly once per
// number; later calls for the same number return false.
func (s *DedupeSet) TryClaim(number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claimed[number]; ok {
		return false
	}
	s.claimed[number] = struct{}{}
	return true
}

// Len returns the number of claimed publication numbers.
func (s *DedupeSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claimed)
}
