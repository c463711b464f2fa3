package headextract

// setVector is an insertion-ordered set.
type setVector[T comparable] struct {
	items []T
	index map[T]struct{}
}

func newSetVector[T comparable](items ...T) *setVector[T] {
	s := &setVector[T]{index: make(map[T]struct{}, len(items))}
	for _, it := range items {
		s.insert(it)
	}
	return s
}

// insert adds it and reports whether it was new.
func (s *setVector[T]) insert(it T) bool {
	if _, ok := s.index[it]; ok {
		return false
	}
	s.index[it] = struct{}{}
	s.items = append(s.items, it)
	return true
}

func (s *setVector[T]) has(it T) bool {
	_, ok := s.index[it]
	return ok
}
