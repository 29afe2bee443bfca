package member

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextArchiveID_Monotonic(t *testing.T) {
	a := NextArchiveID()
	b := NextArchiveID()
	require.Greater(t, b, a)
}

func TestAllocator_SequentialUnique(t *testing.T) {
	var a Allocator
	seen := map[int64]bool{}
	for i := 0; i < batchSize*2+5; i++ {
		id := a.Next()
		require.False(t, seen[id], "id %d reused", id)
		seen[id] = true
	}
}

func TestAllocator_IndependentFromOtherAllocator(t *testing.T) {
	var a, b Allocator
	idsA := map[int64]bool{}
	for i := 0; i < batchSize+1; i++ {
		idsA[a.Next()] = true
	}
	// b's first batch is disjoint from a's, since both draw from the
	// shared processCounter.
	for i := 0; i < 10; i++ {
		require.False(t, idsA[b.Next()])
	}
}
