package member

import "sync/atomic"

// batchSize matches spec §5: "a shared atomic counter refilled in batches
// of 1000 to bound contention".
const batchSize = 1000

// processCounter is the single package-wide source of member_id values. It
// plays the role of the shared atomic the teacher's nabbar/golib/atomic
// package wraps generically for arbitrary value types (atomic.Value[T]);
// here the counter is always an int64, so a bare atomic.Int64 is the
// idiomatic choice and needs no generic wrapper (see DESIGN.md).
var processCounter atomic.Int64

// archiveCounter hands out the per-archive_id component of ID.
var archiveCounter atomic.Int64

// NextArchiveID returns a fresh, process-unique archive identifier.
func NextArchiveID() int64 {
	return archiveCounter.Add(1)
}

// Allocator hands out monotonically increasing member_id values to a single
// reader, batching refills against the shared processCounter so concurrent
// readers rarely contend on the same cache line (spec §4.4/§5).
type Allocator struct {
	next int64
	end  int64
}

// Next returns the next member_id for this allocator's archive.
func (a *Allocator) Next() int64 {
	if a.next >= a.end {
		a.refill()
	}
	id := a.next
	a.next++
	return id
}

func (a *Allocator) refill() {
	end := processCounter.Add(batchSize)
	a.end = end
	a.next = end - batchSize
}
