package incremental

import "github.com/RoaringBitmap/roaring/v2"

// OnOffVector is an ordered, indexable collection of items that can be
// switched on and off. Items are appended once and never physically removed.
type OnOffVector[T any] struct {
	items []T
	keys  map[string]uint32
	on    *roaring.Bitmap
}

// NewOnOffVector creates an empty vector.
func NewOnOffVector[T any]() *OnOffVector[T] {
	return &OnOffVector[T]{
		keys: make(map[string]uint32),
		on:   roaring.New(),
	}
}

// Set switches the item with the given key on or off and returns its position.
// Unknown items are appended. changed reports whether the state flipped.
func (v *OnOffVector[T]) Set(key string, item T, on bool) (pos uint32, changed bool) {
	pos, ok := v.keys[key]
	if !ok {
		if !on {
			return 0, false
		}
		pos = uint32(len(v.items))
		v.items = append(v.items, item)
		v.keys[key] = pos
	}
	if on {
		return pos, v.on.CheckedAdd(pos)
	}
	return pos, v.on.CheckedRemove(pos)
}

// Position returns the position of the item with the given key.
func (v *OnOffVector[T]) Position(key string) (uint32, bool) {
	pos, ok := v.keys[key]
	return pos, ok
}

// At returns the item at pos.
func (v *OnOffVector[T]) At(pos uint32) T { return v.items[pos] }

// IsOn reports whether the item at pos is on.
func (v *OnOffVector[T]) IsOn(pos uint32) bool { return v.on.Contains(pos) }

// Len returns the number of items ever appended.
func (v *OnOffVector[T]) Len() int { return len(v.items) }

// Count returns the number of items currently on.
func (v *OnOffVector[T]) Count() int { return int(v.on.GetCardinality()) }

// On returns a copy of the positions that are on.
func (v *OnOffVector[T]) On() *roaring.Bitmap { return v.on.Clone() }

// Each calls fn for every item that is on, in position order.
func (v *OnOffVector[T]) Each(fn func(pos uint32, item T)) {
	it := v.on.Iterator()
	for it.HasNext() {
		pos := it.Next()
		fn(pos, v.items[pos])
	}
}
