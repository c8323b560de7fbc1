package repo

// LeafSet is an insertion ordered set of leaf directories touched by a
// repository mutation.
type LeafSet struct {
	paths []string
	index map[string]struct{}
}

// NewLeafSet creates an empty set.
func NewLeafSet() *LeafSet {
	return &LeafSet{index: map[string]struct{}{}}
}

// Add adds leaf to the set. It reports whether leaf was not there before.
func (s *LeafSet) Add(leaf string) bool {
	if s.index == nil {
		s.index = map[string]struct{}{}
	}
	if _, found := s.index[leaf]; found {
		return false
	}
	s.index[leaf] = struct{}{}
	s.paths = append(s.paths, leaf)
	return true
}

// Contains checks whether leaf is in the set.
func (s *LeafSet) Contains(leaf string) bool {
	_, found := s.index[leaf]
	return found
}

// Len returns the number of leaves.
func (s *LeafSet) Len() int {
	return len(s.paths)
}

// Paths returns leaves in insertion order.
func (s *LeafSet) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Merge adds all leaves of other.
func (s *LeafSet) Merge(other *LeafSet) {
	for _, leaf := range other.paths {
		s.Add(leaf)
	}
}
