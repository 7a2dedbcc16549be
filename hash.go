package dhash

import "hash/maphash"

// MakeDefaultHashFunc returns the default hash function for a comparable
// key type, using the caller-supplied seed for every key it hashes. It is
// used whenever a table is constructed without WithHashFunc.
func MakeDefaultHashFunc[K comparable](seed maphash.Seed) HashFunc[K] {
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}
