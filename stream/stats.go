package stream

import "sync"

// ReadRange records one contiguous span read from a stream, in the order
// StatsIO observed it — forward reads and replayed rewinds alike.
type ReadRange struct {
	Start int64
	End   int64
}

// StatsIO wraps a Stream to record byte counts, seek-call counts and the
// read ranges observed, per spec §8's testable property that rewind-and-
// replay/discard-read strategies must be externally observable. Grounded
// on the same wrap-and-intercept shape as nabbar/golib/ioutils/iowrapper,
// specialized here to accumulate counters instead of transforming data.
type StatsIO struct {
	inner Stream

	mu         sync.Mutex
	bytesRead  int64
	seekCalls  int
	readRanges []ReadRange
}

func NewStatsIO(inner Stream) *StatsIO {
	return &StatsIO{inner: inner}
}

func (s *StatsIO) Read(p []byte) (int, error) {
	n, err := s.inner.Read(p)
	if n > 0 {
		s.mu.Lock()
		pos := s.bytesRead
		s.bytesRead += int64(n)
		s.readRanges = append(s.readRanges, ReadRange{Start: pos, End: pos + int64(n)})
		s.mu.Unlock()
	}
	return n, err
}

func (s *StatsIO) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	s.seekCalls++
	s.mu.Unlock()
	return s.inner.Seek(offset, whence)
}

func (s *StatsIO) Close() error { return s.inner.Close() }

func (s *StatsIO) Seekable() bool { return s.inner.Seekable() }

func (s *StatsIO) Size() (int64, bool) { return s.inner.Size() }

// BytesRead returns the cumulative count of bytes delivered to callers.
func (s *StatsIO) BytesRead() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytesRead
}

// SeekCalls returns how many times Seek was invoked.
func (s *StatsIO) SeekCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekCalls
}

// ReadRanges returns a copy of the recorded read ranges.
func (s *StatsIO) ReadRanges() []ReadRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReadRange, len(s.readRanges))
	copy(out, s.readRanges)
	return out
}
