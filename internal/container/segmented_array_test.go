package container

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentedArray_LoadOrStore(t *testing.T) {
	sa := NewSegmentedArray[int]()
	assert.Nil(t, sa.Load(7))

	v := 42
	got, loaded := sa.LoadOrStore(7, func() *int { return &v })
	assert.False(t, loaded)
	assert.Equal(t, 42, *got)

	got, loaded = sa.LoadOrStore(7, func() *int { t.Fatal("create called twice"); return nil })
	assert.True(t, loaded)
	assert.Same(t, &v, got)
	assert.Equal(t, 1, sa.Len())
}

func TestSegmentedArray_SparseSegments(t *testing.T) {
	sa := NewSegmentedArray[uint32]()
	indexes := []uint32{segmentSize*3 + 5, 1, segmentSize + 2}
	for _, i := range indexes {
		i := i
		sa.LoadOrStore(i, func() *uint32 { return &i })
	}

	var seen []uint32
	sa.Range(func(index uint32, item *uint32) bool {
		assert.Equal(t, index, *item)
		seen = append(seen, index)
		return true
	})
	assert.Equal(t, []uint32{1, segmentSize + 2, segmentSize*3 + 5}, seen)
	assert.Nil(t, sa.Load(segmentSize*2))
	assert.Nil(t, sa.Load(segmentSize*10))

	n := 0
	sa.Range(func(uint32, *uint32) bool { n++; return false })
	assert.Equal(t, 1, n)
}

func TestSegmentedArray_ConcurrentLoadOrStore(t *testing.T) {
	sa := NewSegmentedArray[int]()
	var created atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := uint32(0); i < 3*segmentSize; i += 7 {
				sa.LoadOrStore(i, func() *int {
					created.Add(1)
					v := int(i)
					return &v
				})
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int(created.Load()), sa.Len())
	sa.Range(func(index uint32, item *int) bool {
		assert.Equal(t, int(index), *item)
		return true
	})
}
