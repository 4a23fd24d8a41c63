// Package container implements container data structures.
package container

import (
	"sync"
	"sync/atomic"
)

const (
	// segmentBits determines the size of each segment.
	// 12 bits = 4096 slots per segment.
	segmentBits = 12
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

// SegmentedArray is a thread-safe segmented array of pointers.
// Reads are lock-free; inserting into an unallocated segment takes a short
// exclusive section that never blocks readers.
type SegmentedArray[T any] struct {
	segments atomic.Pointer[[]*Segment[T]]
	mu       sync.Mutex // Protects growth
	size     atomic.Int64
}

// Segment is a fixed-size array of slots.
type Segment[T any] struct {
	items [segmentSize]atomic.Pointer[T]
}

// NewSegmentedArray creates a new SegmentedArray.
func NewSegmentedArray[T any]() *SegmentedArray[T] {
	sa := &SegmentedArray[T]{}
	segments := make([]*Segment[T], 0)
	sa.segments.Store(&segments)
	return sa
}

// Load returns the item at the given index, or nil if the slot is empty.
func (sa *SegmentedArray[T]) Load(index uint32) *T {
	segments := *sa.segments.Load()
	segIdx := int(index >> segmentBits)
	if segIdx >= len(segments) || segments[segIdx] == nil {
		return nil
	}
	return segments[segIdx].items[index&segmentMask].Load()
}

// LoadOrStore returns the existing item at index if present. Otherwise it stores
// the item produced by create and returns it. loaded reports whether the item
// was already present. create runs at most once per slot.
func (sa *SegmentedArray[T]) LoadOrStore(index uint32, create func() *T) (item *T, loaded bool) {
	if v := sa.Load(index); v != nil {
		return v, true
	}

	// Slow path: allocate under the growth lock.
	sa.mu.Lock()
	defer sa.mu.Unlock()

	slot := sa.slot(index)
	if v := slot.Load(); v != nil {
		return v, true
	}
	v := create()
	slot.Store(v)
	sa.size.Add(1)
	return v, false
}

// slot returns the slot for index, growing the segment table if needed.
// The caller must hold sa.mu.
func (sa *SegmentedArray[T]) slot(index uint32) *atomic.Pointer[T] {
	segIdx := int(index >> segmentBits)
	current := *sa.segments.Load()

	if segIdx < len(current) && current[segIdx] != nil {
		return &current[segIdx].items[index&segmentMask]
	}

	grown := current
	if segIdx >= len(grown) {
		grown = make([]*Segment[T], segIdx+1)
		copy(grown, current)
	} else {
		grown = make([]*Segment[T], len(current))
		copy(grown, current)
	}
	grown[segIdx] = &Segment[T]{}

	// Publish new segments
	sa.segments.Store(&grown)
	return &grown[segIdx].items[index&segmentMask]
}

// Len returns the number of occupied slots.
func (sa *SegmentedArray[T]) Len() int {
	return int(sa.size.Load())
}

// Range calls fn for every occupied slot in index order until fn returns false.
func (sa *SegmentedArray[T]) Range(fn func(index uint32, item *T) bool) {
	segments := *sa.segments.Load()
	for segIdx, seg := range segments {
		if seg == nil {
			continue
		}
		base := uint32(segIdx) << segmentBits
		for i := range seg.items {
			if v := seg.items[i].Load(); v != nil {
				if !fn(base+uint32(i), v) {
					return
				}
			}
		}
	}
}
