package pmap

// Set is a persistent set built on top of Map[K, struct{}].
type Set[K any] struct {
	m Map[K, struct{}]
}

// NewSet creates an empty persistent set.
func NewSet[K any](hash HashFunc[K], eq EqFunc[K]) Set[K] {
	return Set[K]{m: New[K, struct{}](hash, eq)}
}

// Len returns the number of elements.
func (s Set[K]) Len() int { return s.m.Len() }

// Has reports whether key is a member.
func (s Set[K]) Has(key K) bool { return s.m.Has(key) }

// Add returns a new set with key inserted.
func (s Set[K]) Add(key K) Set[K] { return Set[K]{m: s.m.Set(key, struct{}{})} }

// Remove returns a new set without key.
func (s Set[K]) Remove(key K) Set[K] { return Set[K]{m: s.m.Delete(key)} }

// Range calls f for every element in unspecified order.
func (s Set[K]) Range(f func(K) bool) {
	s.m.Range(func(k K, _ struct{}) bool { return f(k) })
}

// Keys returns all elements in unspecified order.
func (s Set[K]) Keys() []K { return s.m.Keys() }

// Equal reports whether two sets hold the same elements.
func (s Set[K]) Equal(other Set[K]) bool {
	return s.m.Equal(other.m, func(_, _ struct{}) bool { return true })
}
