package dhash

import (
	"fmt"
	"sync"

	"github.com/google/go-cmp/cmp"
)

// Map is a hash map from comparable keys to arbitrary values, built on
// open addressing with tombstone-based deletion, perturbation probing and
// adaptive table sizing (see table.go). A single mutex guards every public
// operation; internal table methods never lock, so resize can freely
// re-enter insertAt without deadlocking.
type Map[K comparable, V any] struct {
	mu sync.Mutex
	t  table[K, V]
}

// New returns an empty Map whose initial capacity is the next power of two
// at or above capacity, but never less than MinCapacity (so MinCapacity
// for any capacity <= MinCapacity, including zero and negative values).
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{}
	m.t.init(capacity, opts...)
	return m
}

// FromKeys builds a map where every element of seq maps to value. Later
// duplicates in seq simply overwrite earlier ones.
func FromKeys[K comparable, V any](seq []K, value V) *Map[K, V] {
	m := New[K, V](len(seq))
	for _, k := range seq {
		m.t.insert(k, value)
	}
	return m
}

// Set inserts or overwrites key. set(k,v); set(k,v) leaves the map
// identical to a single set(k,v).
func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t.insert(key, value)
}

// Get returns the value bound to key, or ErrKeyNotFound if absent.
func (m *Map[K, V]) Get(key K) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.t.get(key)
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return v, nil
}

// GetOr returns the value bound to key, or def if key is absent. It never
// fails.
func (m *Map[K, V]) GetOr(key K, def V) V {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.t.get(key); ok {
		return v
	}
	return def
}

// Contains reports whether key is LIVE in the table.
func (m *Map[K, V]) Contains(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.contains(key)
}

// Delete removes key, or fails with ErrKeyNotFound if it was already
// absent. A successful delete may trigger a shrink.
func (m *Map[K, V]) Delete(key K) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.t.delete(key) {
		return fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	m.t.maybeShrink()
	return nil
}

// Pop removes key and returns its value. If key is absent, it returns the
// first element of def if one was supplied, else fails with
// ErrKeyNotFound.
func (m *Map[K, V]) Pop(key K, def ...V) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.t.get(key); ok {
		m.t.delete(key)
		m.t.maybeShrink()
		return v, nil
	}

	if len(def) > 0 {
		return def[0], nil
	}

	var zero V
	return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
}

// PopArbitrary removes and returns some entry, or fails with ErrEmptyMap
// if the map holds nothing.
func (m *Map[K, V]) PopArbitrary() (K, V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, v, ok := m.t.popArbitrary()
	if !ok {
		var zk K
		var zv V
		return zk, zv, ErrEmptyMap
	}
	m.t.maybeShrink()
	return k, v, nil
}

// SetDefault inserts def for key if absent, and returns the current value
// (old or newly inserted) either way.
func (m *Map[K, V]) SetDefault(key K, def V) V {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.t.get(key); ok {
		return v
	}
	m.t.insert(key, def)
	return def
}

// Pair is one key/value binding, used by Update's pair-sequence form.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Update merges src into m, insert-or-overwrite for every pair. src may be
// another *Map[K,V], a []Pair[K,V], or a dynamically-shaped [][]any
// sequence; each [][]any element must have exactly two components and
// assert to K and V, or Update fails with ErrBadPair.
func (m *Map[K, V]) Update(src any) error {
	switch s := src.(type) {
	case *Map[K, V]:
		s.mu.Lock()
		pairs := make([]slot[K, V], 0, s.t.live)
		for i := range s.t.slots {
			if s.t.slots[i].state == slotLive {
				pairs = append(pairs, s.t.slots[i])
			}
		}
		s.mu.Unlock()

		m.mu.Lock()
		defer m.mu.Unlock()
		for _, p := range pairs {
			m.t.insert(p.key, p.value)
		}
		return nil

	case []Pair[K, V]:
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, p := range s {
			m.t.insert(p.Key, p.Value)
		}
		return nil

	case [][]any:
		parsed := make([]Pair[K, V], 0, len(s))
		for _, e := range s {
			if len(e) != 2 {
				return ErrBadPair
			}
			k, ok := e[0].(K)
			if !ok {
				return ErrBadPair
			}
			v, ok := e[1].(V)
			if !ok {
				return ErrBadPair
			}
			parsed = append(parsed, Pair[K, V]{Key: k, Value: v})
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		for _, p := range parsed {
			m.t.insert(p.Key, p.Value)
		}
		return nil

	default:
		return fmt.Errorf("dhash: unsupported update source type %T", src)
	}
}

// Clear resets the map to its initial, empty state (capacity MinCapacity).
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t.reset()
}

// Copy returns a shallow, independently mutable clone: a fresh table with
// the same key/value bindings.
func (m *Map[K, V]) Copy() *Map[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := New[K, V](int(m.t.capacity))
	cp.t.hashFunc = m.t.hashFunc
	for i := range m.t.slots {
		s := &m.t.slots[i]
		if s.state == slotLive {
			cp.t.insert(s.key, s.value)
		}
	}
	return cp
}

// Len returns the number of LIVE entries.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.t.live)
}

// Equals reports whether m and other are maps over the same domain with
// equal values on every key, order-insensitive. Values are compared
// structurally with cmp.Equal rather than ==, since V is unconstrained.
//
// m and other are each snapshotted under their own lock, one at a time,
// so no two locks are ever held at once; this avoids the deadlock a
// concurrent a.Equals(b) / b.Equals(a) pair would otherwise hit.
func (m *Map[K, V]) Equals(other *Map[K, V]) bool {
	if m == other {
		return true
	}

	m.mu.Lock()
	mPairs := make([]slot[K, V], 0, m.t.live)
	for i := range m.t.slots {
		if m.t.slots[i].state == slotLive {
			mPairs = append(mPairs, m.t.slots[i])
		}
	}
	mLive := m.t.live
	m.mu.Unlock()

	other.mu.Lock()
	defer other.mu.Unlock()

	if mLive != other.t.live {
		return false
	}

	for _, p := range mPairs {
		ov, ok := other.t.get(p.key)
		if !ok || !cmp.Equal(p.value, ov) {
			return false
		}
	}
	return true
}

// Stats returns a snapshot of the table's current load and tombstone
// pressure.
func (m *Map[K, V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.stats()
}

// SlotKind mirrors a single slot's state for introspection (DebugSlots).
type SlotKind uint8

const (
	SlotEmpty SlotKind = iota
	SlotTombstone
	SlotLive
)

// DebugSlots returns the current state of every slot in storage order.
// It exists for tests and diagnostics that want to assert on the table's
// raw layout the way the original implementation exposed its entries via
// a debug property; it is not part of the map's data contract.
func (m *Map[K, V]) DebugSlots() []SlotKind {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SlotKind, len(m.t.slots))
	for i := range m.t.slots {
		out[i] = SlotKind(m.t.slots[i].state)
	}
	return out
}

// String renders m as {k: v, k: v, ...} in storage order, mirroring the
// original implementation's __repr__.
func (m *Map[K, V]) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := "{"
	first := true
	for i := range m.t.slots {
		sl := &m.t.slots[i]
		if sl.state != slotLive {
			continue
		}
		if !first {
			s += ", "
		}
		first = false
		s += fmt.Sprintf("%v: %v", sl.key, sl.value)
	}
	return s + "}"
}
