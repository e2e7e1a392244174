// Package override provides the immutable lookup tables that dialects are
// built from.
//
// A Table maps a key (token spelling, node kind, parse trigger) to a
// behavior. Tables are never edited in place: a child table is built from
// its parent by copying it, applying upserts, then applying deletions.
// Building through a chain of parents gives the same result as folding all
// layers of the chain in order, so a dialect three levels deep can be
// checked against a flat fold of its ancestors.
package override

import (
	"iter"
	"maps"
)

// Entry is a single upsert: Key is (re)bound to Value.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Layer is one level of a dialect chain: the upserts and deletions a dialect
// applies on top of whatever it inherits.
type Layer[K comparable, V any] struct {
	Upserts   []Entry[K, V]
	Deletions []K
}

// Table is an immutable key to behavior mapping.
// The zero value and a nil *Table are both empty tables.
type Table[K comparable, V any] struct {
	entries map[K]V
}

// Build returns a new table derived from parent. Upserts are applied in
// order (a later upsert for the same key wins), then every key in deletions
// is removed. Deleting a key that is not present is a no-op.
// parent may be nil and is never modified.
func Build[K comparable, V any](parent *Table[K, V], upserts []Entry[K, V], deletions []K) *Table[K, V] {
	size := parent.Len() + len(upserts)
	entries := make(map[K]V, size)
	if parent != nil {
		maps.Copy(entries, parent.entries)
	}
	for _, e := range upserts {
		entries[e.Key] = e.Value
	}
	for _, k := range deletions {
		delete(entries, k)
	}
	return &Table[K, V]{entries: entries}
}

// Apply builds a child of parent from the layer.
func (l Layer[K, V]) Apply(parent *Table[K, V]) *Table[K, V] {
	return Build(parent, l.Upserts, l.Deletions)
}

// Fold builds a table by applying layers in order starting from an empty
// table. Fold(a, b, c) is observationally equal to building c on top of b
// on top of a.
func Fold[K comparable, V any](layers ...Layer[K, V]) *Table[K, V] {
	var t *Table[K, V]
	for _, l := range layers {
		t = l.Apply(t)
	}
	if t == nil {
		t = Build[K, V](nil, nil, nil)
	}
	return t
}

// Lookup returns the behavior bound to k. A key that was never added and a
// key that was deleted both report false.
func (t *Table[K, V]) Lookup(k K) (V, bool) {
	if t == nil {
		var zero V
		return zero, false
	}
	v, ok := t.entries[k]
	return v, ok
}

// Has reports whether k is bound.
func (t *Table[K, V]) Has(k K) bool {
	_, ok := t.Lookup(k)
	return ok
}

// Len returns the number of bound keys.
func (t *Table[K, V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Keys returns the bound keys in unspecified order.
func (t *Table[K, V]) Keys() []K {
	if t == nil {
		return nil
	}
	keys := make([]K, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over every binding in unspecified order.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if t == nil {
			return
		}
		for k, v := range t.entries {
			if !yield(k, v) {
				return
			}
		}
	}
}
