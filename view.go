package dhash

// KeysView, ValuesView and EntriesView are live views over a Map: their
// Len and membership reflect the map's current state rather than a
// snapshot. Set algebra (Union, Intersect, Difference,
// SymmetricDifference) on a view always returns a freshly materialised
// *Set.

// KeysView is a live view over a Map's keys.
type KeysView[K comparable, V any] struct {
	m *Map[K, V]
}

// KeysView returns a live view over m's keys.
func (m *Map[K, V]) KeysView() *KeysView[K, V] {
	return &KeysView[K, V]{m: m}
}

// Len returns the current number of keys.
func (v *KeysView[K, V]) Len() int { return v.m.Len() }

// Has reports whether key is currently present.
func (v *KeysView[K, V]) Has(key K) bool { return v.m.Contains(key) }

// Elements returns a snapshot slice of the view's current keys.
func (v *KeysView[K, V]) Elements() []K {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	out := make([]K, 0, v.m.t.live)
	for i := range v.m.t.slots {
		if v.m.t.slots[i].state == slotLive {
			out = append(out, v.m.t.slots[i].key)
		}
	}
	return out
}

// String renders the view as KeysView([k, k, ...]).
func (v *KeysView[K, V]) String() string {
	return renderView("KeysView", v.Elements())
}

// Union returns the freshly materialised union of v and other.
func (v *KeysView[K, V]) Union(other Elements[K]) *Set[K] {
	return union(v.Elements(), other.Elements())
}

// Intersect returns the freshly materialised intersection of v and other.
func (v *KeysView[K, V]) Intersect(other Elements[K]) *Set[K] {
	return intersect(v.Elements(), other.Elements())
}

// Difference returns the elements of v not in other.
func (v *KeysView[K, V]) Difference(other Elements[K]) *Set[K] {
	return difference(v.Elements(), other.Elements())
}

// SymmetricDifference returns the elements in exactly one of v, other.
func (v *KeysView[K, V]) SymmetricDifference(other Elements[K]) *Set[K] {
	return symmetricDifference(v.Elements(), other.Elements())
}

// Elements is the capability a set-algebra operand must provide: a
// snapshot slice of its current members. *Set[T] and every *...View
// defined here implement it, so views can be combined with each other or
// with a plain materialised Set.
type Elements[T comparable] interface {
	Elements() []T
}

// Elements implements Elements[T] for *Set[T], so sets can be operands of
// view set algebra.
func (s *Set[T]) Elements() []T { return s.Slice() }

// ValuesView is a live view over a Map's values. It requires V comparable
// because its set algebra materialises a Set[V]; a Map[K,V] with a
// non-comparable V simply never calls this constructor.
type ValuesView[K comparable, V comparable] struct {
	m *Map[K, V]
}

// NewValuesView returns a live view over m's values.
func NewValuesView[K comparable, V comparable](m *Map[K, V]) *ValuesView[K, V] {
	return &ValuesView[K, V]{m: m}
}

// Len returns the current number of values (duplicates counted once they
// collapse into a Set, but Len reports entry count, matching the map's
// Len).
func (v *ValuesView[K, V]) Len() int { return v.m.Len() }

// Elements returns a snapshot slice of the view's current values.
func (v *ValuesView[K, V]) Elements() []V {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	out := make([]V, 0, v.m.t.live)
	for i := range v.m.t.slots {
		if v.m.t.slots[i].state == slotLive {
			out = append(out, v.m.t.slots[i].value)
		}
	}
	return out
}

func (v *ValuesView[K, V]) String() string {
	return renderView("ValuesView", v.Elements())
}

func (v *ValuesView[K, V]) Union(other Elements[V]) *Set[V] {
	return union(v.Elements(), other.Elements())
}

func (v *ValuesView[K, V]) Intersect(other Elements[V]) *Set[V] {
	return intersect(v.Elements(), other.Elements())
}

func (v *ValuesView[K, V]) Difference(other Elements[V]) *Set[V] {
	return difference(v.Elements(), other.Elements())
}

func (v *ValuesView[K, V]) SymmetricDifference(other Elements[V]) *Set[V] {
	return symmetricDifference(v.Elements(), other.Elements())
}

// EntriesView is a live view over a Map's key/value pairs. Like
// ValuesView, it requires V comparable so Pair[K,V] is itself comparable
// and can populate a Set[Pair[K,V]].
type EntriesView[K comparable, V comparable] struct {
	m *Map[K, V]
}

// NewEntriesView returns a live view over m's key/value pairs.
func NewEntriesView[K comparable, V comparable](m *Map[K, V]) *EntriesView[K, V] {
	return &EntriesView[K, V]{m: m}
}

// Len returns the current number of entries.
func (v *EntriesView[K, V]) Len() int { return v.m.Len() }

// Elements returns a snapshot slice of the view's current pairs.
func (v *EntriesView[K, V]) Elements() []Pair[K, V] {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	out := make([]Pair[K, V], 0, v.m.t.live)
	for i := range v.m.t.slots {
		s := &v.m.t.slots[i]
		if s.state == slotLive {
			out = append(out, Pair[K, V]{Key: s.key, Value: s.value})
		}
	}
	return out
}

func (v *EntriesView[K, V]) String() string {
	return renderView("EntriesView", v.Elements())
}

func (v *EntriesView[K, V]) Union(other Elements[Pair[K, V]]) *Set[Pair[K, V]] {
	return union(v.Elements(), other.Elements())
}

func (v *EntriesView[K, V]) Intersect(other Elements[Pair[K, V]]) *Set[Pair[K, V]] {
	return intersect(v.Elements(), other.Elements())
}

func (v *EntriesView[K, V]) Difference(other Elements[Pair[K, V]]) *Set[Pair[K, V]] {
	return difference(v.Elements(), other.Elements())
}

func (v *EntriesView[K, V]) SymmetricDifference(other Elements[Pair[K, V]]) *Set[Pair[K, V]] {
	return symmetricDifference(v.Elements(), other.Elements())
}

func union[T comparable](a, b []T) *Set[T] {
	s := NewSet(a...)
	for _, e := range b {
		s.Add(e)
	}
	return s
}

func intersect[T comparable](a, b []T) *Set[T] {
	bs := NewSet(b...)
	s := NewSet[T]()
	for _, e := range a {
		if bs.Has(e) {
			s.Add(e)
		}
	}
	return s
}

func difference[T comparable](a, b []T) *Set[T] {
	bs := NewSet(b...)
	s := NewSet[T]()
	for _, e := range a {
		if !bs.Has(e) {
			s.Add(e)
		}
	}
	return s
}

func symmetricDifference[T comparable](a, b []T) *Set[T] {
	as, bs := NewSet(a...), NewSet(b...)
	s := NewSet[T]()
	for _, e := range a {
		if !bs.Has(e) {
			s.Add(e)
		}
	}
	for _, e := range b {
		if !as.Has(e) {
			s.Add(e)
		}
	}
	return s
}

func renderView[T any](name string, elems []T) string {
	out := name + "(["
	for i, e := range elems {
		if i > 0 {
			out += ", "
		}
		out += toReprString(e)
	}
	return out + "])"
}
