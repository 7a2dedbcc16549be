package dhash

import "errors"

// Error sentinels returned by Map operations. Callers compare against these
// with errors.Is rather than matching on message text.
var (
	// ErrKeyNotFound is returned by Get, Delete and Pop when the requested
	// key has no LIVE slot in the table.
	ErrKeyNotFound = errors.New("dhash: key not found")

	// ErrEmptyMap is returned by PopArbitrary when the map holds no entries.
	ErrEmptyMap = errors.New("dhash: map is empty")

	// ErrBadPair is returned by Update when a pair sequence element does not
	// have exactly two components.
	ErrBadPair = errors.New("dhash: pair must have exactly 2 elements")

	// ErrConcurrentModification is returned by an iterator's Next when the
	// map's live count has changed since the iterator was created.
	ErrConcurrentModification = errors.New("dhash: map modified during iteration")

	// ErrUnhashable documents the forbidden case of using a Map as a key in
	// another hashable container; Map never implements a hash capability.
	ErrUnhashable = errors.New("dhash: map type is unhashable")
)
