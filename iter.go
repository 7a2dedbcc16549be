package dhash

// KeyIter, ValIter and EntryIter are snapshot iterators: each captures the
// map's live count at creation and fails ErrConcurrentModification from
// Next if that count has changed. Each Next call holds the map's lock only
// for its own single step, not across the whole iteration.

type iterBase[K comparable, V any] struct {
	m           *Map[K, V]
	snapshotLen int
	idx         int
	done        bool
}

func newIterBase[K comparable, V any](m *Map[K, V]) iterBase[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return iterBase[K, V]{m: m, snapshotLen: int(m.t.live)}
}

// step, called with m.mu held, validates the snapshot and returns the
// index of the next LIVE slot, or -1 once exhausted or on mismatch.
func (b *iterBase[K, V]) step() (int, error) {
	if b.done {
		return -1, nil
	}
	if int(b.m.t.live) != b.snapshotLen {
		b.done = true
		return -1, ErrConcurrentModification
	}

	for b.idx < len(b.m.t.slots) {
		i := b.idx
		b.idx++
		if b.m.t.slots[i].state == slotLive {
			return i, nil
		}
	}
	b.done = true
	return -1, nil
}

// KeyIter iterates the map's keys.
type KeyIter[K comparable, V any] struct {
	iterBase[K, V]
}

// Keys returns a snapshot iterator over m's keys.
func (m *Map[K, V]) Keys() *KeyIter[K, V] {
	return &KeyIter[K, V]{newIterBase(m)}
}

// Next returns the next key, or ok=false once exhausted. It fails
// ErrConcurrentModification if the map's live count changed since Keys
// was called.
func (it *KeyIter[K, V]) Next() (key K, ok bool, err error) {
	it.m.mu.Lock()
	defer it.m.mu.Unlock()

	i, err := it.step()
	if err != nil || i < 0 {
		return key, false, err
	}
	return it.m.t.slots[i].key, true, nil
}

// ValIter iterates the map's values.
type ValIter[K comparable, V any] struct {
	iterBase[K, V]
}

// Values returns a snapshot iterator over m's values.
func (m *Map[K, V]) Values() *ValIter[K, V] {
	return &ValIter[K, V]{newIterBase(m)}
}

// Next returns the next value, or ok=false once exhausted.
func (it *ValIter[K, V]) Next() (value V, ok bool, err error) {
	it.m.mu.Lock()
	defer it.m.mu.Unlock()

	i, err := it.step()
	if err != nil || i < 0 {
		return value, false, err
	}
	return it.m.t.slots[i].value, true, nil
}

// EntryIter iterates the map's key/value pairs.
type EntryIter[K comparable, V any] struct {
	iterBase[K, V]
}

// Entries returns a snapshot iterator over m's key/value pairs.
func (m *Map[K, V]) Entries() *EntryIter[K, V] {
	return &EntryIter[K, V]{newIterBase(m)}
}

// Next returns the next pair, or ok=false once exhausted.
func (it *EntryIter[K, V]) Next() (entry Pair[K, V], ok bool, err error) {
	it.m.mu.Lock()
	defer it.m.mu.Unlock()

	i, err := it.step()
	if err != nil || i < 0 {
		return entry, false, err
	}
	s := &it.m.t.slots[i]
	return Pair[K, V]{Key: s.key, Value: s.value}, true, nil
}
