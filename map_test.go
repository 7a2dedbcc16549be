package dhash

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_EmptyConstruction(t *testing.T) {
	m := New[string, int](8)

	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Contains("x"))

	_, err := m.Get("x")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMap_SetGet(t *testing.T) {
	m := New[string, int](8)

	m.Set("foo", 42)
	v, err := m.Get("foo")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	m.Set("foo", 100)
	v, err = m.Get("foo")
	require.NoError(t, err)
	assert.Equal(t, 100, v, "set(k,v1); set(k,v2); get(k) must return v2")
	assert.Equal(t, 1, m.Len(), "overwrite must not change len")
}

func TestMap_GetOr(t *testing.T) {
	m := New[string, int](8)
	m.Set("foo", 1)

	assert.Equal(t, 1, m.GetOr("foo", 99))
	assert.Equal(t, 99, m.GetOr("bar", 99))
}

func TestMap_DeleteThenContains(t *testing.T) {
	m := New[string, int](8)
	m.Set("foo", 1)

	require.NoError(t, m.Delete("foo"))
	assert.False(t, m.Contains("foo"))

	err := m.Delete("foo")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMap_TombstoneDoesNotShadowReinsert(t *testing.T) {
	m := New[string, int](8)

	m.Set("k", 1)
	require.NoError(t, m.Delete("k"))
	m.Set("k", 1)

	v, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestMap_Pop(t *testing.T) {
	m := New[string, int](8)
	m.Set("foo", 1)

	v, err := m.Pop("foo")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, m.Contains("foo"))

	_, err = m.Pop("foo")
	require.ErrorIs(t, err, ErrKeyNotFound)

	v, err = m.Pop("foo", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestMap_PopArbitrary(t *testing.T) {
	m := New[int, int](8)

	_, _, err := m.PopArbitrary()
	require.ErrorIs(t, err, ErrEmptyMap)

	for i := range 5 {
		m.Set(i, i*10)
	}

	seen := map[int]bool{}
	for range 5 {
		k, v, err := m.PopArbitrary()
		require.NoError(t, err)
		assert.Equal(t, k*10, v)
		seen[k] = true
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 0, m.Len())
}

func TestMap_SetDefault(t *testing.T) {
	m := New[string, int](8)

	v := m.SetDefault("k", 5)
	assert.Equal(t, 5, v)

	v = m.SetDefault("k", 9)
	assert.Equal(t, 5, v, "SetDefault must not overwrite an existing value")
}

func TestMap_Update_Map(t *testing.T) {
	a := New[string, int](8)
	a.Set("x", 1)

	b := New[string, int](8)
	b.Set("y", 2)
	b.Set("x", 99)

	require.NoError(t, a.Update(b))

	assert.Equal(t, 2, a.Len())
	v, _ := a.Get("x")
	assert.Equal(t, 99, v)
	v, _ = a.Get("y")
	assert.Equal(t, 2, v)
}

func TestMap_Update_Pairs(t *testing.T) {
	m := New[string, int](8)
	require.NoError(t, m.Update([]Pair[string, int]{{Key: "a", Value: 1}, {Key: "b", Value: 2}}))

	assert.Equal(t, 2, m.Len())
	v, _ := m.Get("b")
	assert.Equal(t, 2, v)
}

func TestMap_Update_DynamicPairs_BadPair(t *testing.T) {
	m := New[string, int](8)

	err := m.Update([][]any{{"a", 1}, {"b", 2, "extra"}})
	require.ErrorIs(t, err, ErrBadPair)
}

func TestMap_Update_DynamicPairs_WrongType(t *testing.T) {
	m := New[string, int](8)

	err := m.Update([][]any{{"a", "not an int"}})
	require.ErrorIs(t, err, ErrBadPair)
}

func TestMap_Update_EquivalentToSequentialSet(t *testing.T) {
	via := New[string, int](8)
	sequential := New[string, int](8)

	pairs := []Pair[string, int]{{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "a", Value: 3}}
	require.NoError(t, via.Update(pairs))
	for _, p := range pairs {
		sequential.Set(p.Key, p.Value)
	}

	assert.True(t, via.Equals(sequential))
}

func TestMap_Clear(t *testing.T) {
	m := New[string, int](8)
	for i := range 5 {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	m.Clear()

	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Contains("k0"))
	assert.Equal(t, MinCapacity, m.Stats().Capacity)
}

func TestMap_CopyIsIndependent(t *testing.T) {
	m := New[string, int](8)
	m.Set("a", 1)

	cp := m.Copy()
	assert.Equal(t, m.Len(), cp.Len())
	assert.True(t, m.Equals(cp))

	cp.Set("b", 2)
	assert.False(t, m.Contains("b"), "mutating the copy must not affect the original")
}

func TestMap_Equals(t *testing.T) {
	a := New[string, int](8)
	b := New[string, int](8)

	assert.True(t, a.Equals(b))

	a.Set("x", 1)
	assert.False(t, a.Equals(b))

	b.Set("x", 1)
	assert.True(t, a.Equals(b))

	b.Set("y", 2)
	assert.False(t, a.Equals(b))
}

func TestFromKeys(t *testing.T) {
	m := FromKeys([]string{"a", "b", "a", "c"}, 0)

	assert.Equal(t, 3, m.Len())
	it := m.Keys()
	var got []string
	for {
		k, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, k)
	}
	sort.Strings(got)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestMap_ManyKeysWithLowBitCollisions(t *testing.T) {
	lowBits := func(s string) uint64 {
		var h uint64
		for _, c := range s {
			h = h*131 + uint64(c)
		}
		return h
	}

	m := New(16, WithHashFunc[string, int](lowBits))

	const n = 10000
	want := make(map[string]int, n)

	// Generate short keys from a 2-letter alphabet so many collide in
	// their low bits.
	gen := func(idx int) string {
		s := ""
		for idx > 0 || s == "" {
			if idx%2 == 0 {
				s += "x"
			} else {
				s += "y"
			}
			idx /= 2
			if len(s) >= 20 {
				break
			}
		}
		return s
	}
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("%s-%d", gen(i), i%7)
		want[k] = i
		m.Set(k, i)
	}

	assert.Equal(t, len(want), m.Len())
	for k, v := range want {
		got, err := m.Get(k)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestMap_ConcurrentInsertion(t *testing.T) {
	m := New[int, int](8)

	const workers = 10
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range perWorker {
				key := w*perWorker + i
				m.Set(key, key)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, m.Len())
	for w := range workers {
		for i := range perWorker {
			key := w*perWorker + i
			v, err := m.Get(key)
			require.NoError(t, err)
			assert.Equal(t, key, v)
		}
	}
}

func TestMap_PopRace(t *testing.T) {
	m := New[int, int](8)
	for i := range 10000 {
		m.Set(i, i)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := range 10000 {
			v, err := m.Pop(i, 2)
			if err == nil {
				assert.True(t, v == i || v == 2)
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := range 10000 {
			_ = m.Delete(i)
		}
	}()

	wg.Wait()
	assert.Equal(t, 0, m.Len())
}

func TestMap_KeysView_SetAlgebra(t *testing.T) {
	a := New[string, int](8)
	a.Set("x", 1)
	a.Set("y", 1)

	b := New[string, int](8)
	b.Set("y", 1)
	b.Set("z", 1)

	union := a.KeysView().Union(b.KeysView())
	inter := a.KeysView().Intersect(b.KeysView())
	diff := a.KeysView().Difference(b.KeysView())
	symdiff := a.KeysView().SymmetricDifference(b.KeysView())

	assertSetEqual(t, union, []string{"x", "y", "z"})
	assertSetEqual(t, inter, []string{"y"})
	assertSetEqual(t, diff, []string{"x"})
	assertSetEqual(t, symdiff, []string{"x", "z"})
}

func TestMap_EntriesView_SetAlgebra(t *testing.T) {
	a := New[string, int](8)
	a.Set("x", 1)
	a.Set("y", 2)

	b := New[string, int](8)
	b.Set("y", 2)
	b.Set("z", 3)

	va := NewEntriesView(a)
	vb := NewEntriesView(b)

	inter := va.Intersect(vb)
	assert.Equal(t, 1, inter.Len())
	assert.True(t, inter.Has(Pair[string, int]{Key: "y", Value: 2}))
}

func TestMap_Iterator_ConcurrentModification(t *testing.T) {
	m := New[int, int](8)
	for i := range 5 {
		m.Set(i, i)
	}

	it := m.Keys()
	_, _, err := it.Next()
	require.NoError(t, err)

	m.Set(100, 100)

	_, _, err = it.Next()
	require.ErrorIs(t, err, ErrConcurrentModification)
}

func TestMap_Iterator_CompletesWithoutMutation(t *testing.T) {
	m := New[string, int](8)
	keys := []string{"a", "b", "c"}
	for _, k := range keys {
		m.Set(k, 1)
	}

	it := m.Keys()
	var got []string
	for {
		k, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, k)
	}
	sort.Strings(got)

	if diff := cmp.Diff(keys, got); diff != "" {
		t.Fatalf("unexpected key set (-want +got):\n%s", diff)
	}
}

func TestMap_Stats(t *testing.T) {
	m := New[int, int](16)
	stats := m.Stats()
	assert.Equal(t, 0, stats.Len)
	assert.Equal(t, 16, stats.Capacity)

	for i := range 5 {
		m.Set(i, i)
	}
	stats = m.Stats()
	assert.Equal(t, 5, stats.Len)
}

func TestMap_DebugSlots(t *testing.T) {
	m := New[int, int](8)
	m.Set(1, 1)
	require.NoError(t, m.Delete(1))

	slots := m.DebugSlots()
	counts := map[SlotKind]int{}
	for _, s := range slots {
		counts[s]++
	}
	assert.Equal(t, 1, counts[SlotTombstone])
}

func TestErrors_AreSentinelsNotMessages(t *testing.T) {
	m := New[string, int](8)
	_, err := m.Get("missing")
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}

func assertSetEqual[T comparable](t *testing.T, s *Set[T], want []string) {
	t.Helper()
	got := make([]string, 0, s.Len())
	for _, e := range s.Slice() {
		got = append(got, fmt.Sprint(e))
	}
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
}
