// Command dhashdemo exercises the dhash.Map public API: inserts a sample
// workload, prints load stats, and demonstrates set algebra over key
// views.
package main

import (
	"fmt"
	"log"

	"github.com/mihael-ab/dhash"
)

func main() {
	m := dhash.New[string, int](8)

	for i := 0; i < 20; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i*i)
	}

	log.Printf("inserted %d entries", m.Len())
	log.Printf("stats: %+v", m.Stats())

	if err := m.Delete("key-0"); err != nil {
		log.Fatalf("delete: %v", err)
	}

	v, err := m.Get("key-1")
	if err != nil {
		log.Fatalf("get: %v", err)
	}
	fmt.Printf("key-1 => %d\n", v)

	evens := dhash.New[string, int](8)
	for i := 0; i < 10; i += 2 {
		evens.Set(fmt.Sprintf("key-%d", i), i)
	}

	union := m.KeysView().Union(evens.KeysView())
	inter := m.KeysView().Intersect(evens.KeysView())

	fmt.Printf("|union| = %d, |intersect| = %d\n", union.Len(), inter.Len())

	_, _, err = m.PopArbitrary()
	if err != nil {
		log.Fatalf("pop arbitrary: %v", err)
	}
	log.Printf("after pop arbitrary: %+v", m.Stats())
}
