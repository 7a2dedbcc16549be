package dhash

import "hash/maphash"

// table is the open-addressed slot array underneath Map. Every public
// mutation or lookup on Map funnels through locate, the slot-location
// primitive that returns either the slot already holding a key or a slot
// suitable for insertion.
//
// table methods never take a lock themselves; Map holds the mutex for the
// duration of each public call, and rebuild/resize re-enter insertAt
// directly. This is what gives the table its "reentrant" behaviour without
// an actual reentrant mutex.
type table[K comparable, V any] struct {
	slots []slot[K, V]

	capacity     uintptr
	mask         uintptr
	live         uintptr // live_count: LIVE slots
	used         uintptr // used_count: LIVE + TOMBSTONE slots
	prevCapacity uintptr // capacity before the most recent growth

	hashFunc HashFunc[K]
}

func (t *table[K, V]) init(capacity int, opts ...Option[K, V]) {
	if capacity < 0 {
		capacity = 0
	}
	c := uintptr(NextPowerOf2(uint32(capacity)))
	if c < MinCapacity {
		c = MinCapacity
	}

	t.capacity = c
	t.mask = c - 1
	t.prevCapacity = c
	t.slots = make([]slot[K, V], c)
	t.live = 0
	t.used = 0

	for _, opt := range opts {
		opt(t)
	}

	if t.hashFunc == nil {
		t.hashFunc = MakeDefaultHashFunc[K](maphash.MakeSeed())
	}
}

// locate is the core slot-location primitive: it walks the perturbation
// probe sequence starting at hash&mask, remembering the first TOMBSTONE
// seen as a candidate insertion point, and returns either the LIVE slot
// matching key (hit=true) or the slot an insert should use (hit=false):
// the first tombstone on the chain if one was seen, else the terminating
// EMPTY slot.
func (t *table[K, V]) locate(hash uint64, key K) (idx uintptr, hit bool) {
	p := newProbe(hash, t.mask)
	i := p.index

	var freeslot uintptr
	haveFree := false

	for {
		s := &t.slots[i]
		switch s.state {
		case slotLive:
			if s.hash == hash && s.key == key {
				return i, true
			}
		case slotEmpty:
			if haveFree {
				return freeslot, false
			}
			return i, false
		case slotTombstone:
			if !haveFree {
				freeslot, haveFree = i, true
			}
		}
		i = p.next()
	}
}

// insertAt writes key/value at the slot locate() would choose for hash,
// given an already-computed hash (so rebuild never rehashes a key). It
// never triggers resize; callers that need the growth policy applied call
// insert instead.
func (t *table[K, V]) insertAt(hash uint64, key K, value V) {
	idx, hit := t.locate(hash, key)
	s := &t.slots[idx]

	if hit {
		s.value = value
		return
	}

	wasEmpty := s.state == slotEmpty
	*s = slot[K, V]{state: slotLive, hash: hash, key: key, value: value}
	t.live++
	if wasEmpty {
		t.used++
	}
}

// insert is the public insertion path: locate-and-write followed by the
// load-factor check that triggers a resize.
func (t *table[K, V]) insert(key K, value V) {
	t.insertAt(t.hashFunc(key), key, value)

	if loadCrossed(t.used, t.capacity) {
		t.resize()
	}
}

func (t *table[K, V]) get(key K) (V, bool) {
	idx, hit := t.locate(t.hashFunc(key), key)
	if !hit {
		var zero V
		return zero, false
	}
	return t.slots[idx].value, true
}

func (t *table[K, V]) contains(key K) bool {
	_, hit := t.locate(t.hashFunc(key), key)
	return hit
}

// delete turns a LIVE slot into a TOMBSTONE. It does not itself call
// maybeShrink; Map.Delete and Map.Pop do, once the delete has taken
// effect and while still holding the map's lock.
func (t *table[K, V]) delete(key K) bool {
	idx, hit := t.locate(t.hashFunc(key), key)
	if !hit {
		return false
	}

	t.slots[idx] = slot[K, V]{state: slotTombstone}
	t.live--
	return true
}

// popArbitrary removes and returns some LIVE entry. The choice is
// unspecified beyond "some LIVE slot exists"; this walks the array in
// storage order and takes the first one found.
func (t *table[K, V]) popArbitrary() (key K, value V, ok bool) {
	for i := range t.slots {
		if t.slots[i].state != slotLive {
			continue
		}
		key, value = t.slots[i].key, t.slots[i].value
		t.slots[i] = slot[K, V]{state: slotTombstone}
		t.live--
		return key, value, true
	}
	return key, value, false
}

// resize grows the table when it is saturated by LIVE entries, otherwise
// compacts in place to purge tombstones without changing capacity.
func (t *table[K, V]) resize() {
	if t.live*loadDenominator >= t.capacity*loadNumerator {
		factor := uintptr(growFactorSmall)
		if t.used >= GrowCutoff {
			factor = growFactorLarge
		}
		t.prevCapacity = t.capacity
		t.rebuild(t.capacity * factor)
		return
	}

	t.rebuild(t.capacity)
}

// maybeShrink is called after a successful delete. It shrinks when the
// table's LIVE count has fallen below 2/3 of prevCapacity, the capacity
// the table had before its most recent growth.
func (t *table[K, V]) maybeShrink() {
	if t.capacity <= MinCapacity {
		return
	}
	if t.live*loadDenominator >= t.prevCapacity*loadNumerator {
		return
	}

	factor := uintptr(shrinkFactorSmall)
	if t.live >= GrowCutoff {
		factor = shrinkFactorLarge
	}

	newCapacity := t.capacity / factor
	if newCapacity < MinCapacity {
		newCapacity = MinCapacity
	}
	t.rebuild(newCapacity)
}

// rebuild allocates a fresh EMPTY slot array of newCapacity and reinserts
// every previously LIVE entry, eliminating all tombstones. It never
// recurses into resize/maybeShrink.
func (t *table[K, V]) rebuild(newCapacity uintptr) {
	old := t.slots

	t.slots = make([]slot[K, V], newCapacity)
	t.capacity = newCapacity
	t.mask = newCapacity - 1
	t.live = 0
	t.used = 0

	for i := range old {
		if old[i].state == slotLive {
			t.insertAt(old[i].hash, old[i].key, old[i].value)
		}
	}
}

// reset restores the table to its initial, empty MinCapacity state.
func (t *table[K, V]) reset() {
	t.capacity = MinCapacity
	t.mask = t.capacity - 1
	t.prevCapacity = t.capacity
	t.slots = make([]slot[K, V], t.capacity)
	t.live = 0
	t.used = 0
}

func (t *table[K, V]) stats() Stats {
	var loadFactor, tombstoneRatio float64
	if t.capacity > 0 {
		loadFactor = float64(t.used) / float64(t.capacity)
	}
	tombstones := t.used - t.live
	if t.used > 0 {
		tombstoneRatio = float64(tombstones) / float64(t.used)
	}

	return Stats{
		Len:            int(t.live),
		Capacity:       int(t.capacity),
		Used:           int(t.used),
		Tombstones:     int(tombstones),
		LoadFactor:     loadFactor,
		TombstoneRatio: tombstoneRatio,
	}
}
