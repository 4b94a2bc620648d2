// Package store provides the keyed snapshot store the aggregators write
// through. A store keeps only the latest value per key (bounded memory, no
// event history) and records a delta for every write so downstream
// projectors can see exactly what changed in a block.
package store

// Delta records one write: the key's value before the write (nil when the
// key was previously unseen) and the value written.
type Delta[T any] struct {
	Ordinal uint64
	Key     string
	Old     *T
	New     T
}

// Store is a key → latest-value mapping with delta tracking. It is not safe
// for concurrent use; the pipeline mutates stores sequentially within a
// block.
type Store[T any] struct {
	snapshots map[string]T
	deltas    []Delta[T]
}

// New creates an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{snapshots: make(map[string]T)}
}

// GetLast returns the latest snapshot for key as of the previous write, and
// whether the key exists.
func (s *Store[T]) GetLast(key string) (T, bool) {
	v, ok := s.snapshots[key]
	return v, ok
}

// Set writes value under key and records a delta against the prior snapshot.
// Aggregators batch their updates per key so each key is written at most
// once per block pass.
func (s *Store[T]) Set(ordinal uint64, key string, value T) {
	var old *T
	if prev, ok := s.snapshots[key]; ok {
		old = &prev
	}
	s.snapshots[key] = value
	s.deltas = append(s.deltas, Delta[T]{Ordinal: ordinal, Key: key, Old: old, New: value})
}

// Deltas returns the writes recorded since the last Flush, in write order.
func (s *Store[T]) Deltas() []Delta[T] {
	return s.deltas
}

// Flush returns the recorded deltas and clears them for the next block pass.
// Snapshots are retained.
func (s *Store[T]) Flush() []Delta[T] {
	d := s.deltas
	s.deltas = nil
	return d
}

// Len returns the number of keys present.
func (s *Store[T]) Len() int {
	return len(s.snapshots)
}

// Range calls fn for every key until fn returns false. Iteration order is
// unspecified.
func (s *Store[T]) Range(fn func(key string, value T) bool) {
	for k, v := range s.snapshots {
		if !fn(k, v) {
			return
		}
	}
}

// Snapshot copies the full key → value mapping, for checkpointing.
func (s *Store[T]) Snapshot() map[string]T {
	out := make(map[string]T, len(s.snapshots))
	for k, v := range s.snapshots {
		out[k] = v
	}
	return out
}

// Restore replaces the store contents with the given snapshot map and clears
// any pending deltas. Used when resuming from a checkpoint.
func (s *Store[T]) Restore(snapshots map[string]T) {
	s.snapshots = make(map[string]T, len(snapshots))
	for k, v := range snapshots {
		s.snapshots[k] = v
	}
	s.deltas = nil
}
