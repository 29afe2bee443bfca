package stream

import (
	"sync"
)

// LazyOpenIO defers the (potentially expensive, e.g. network-backed)
// opening of a Stream until its first real Read/Seek, per spec §4.4's
// "members are opened lazily" requirement. Grounded on the same deferred-
// construction idea as nabbar/golib/ioutils/iowrapper.New, which accepts a
// nil underlying object up front and only needs one to be wired in before
// first use.
type LazyOpenIO struct {
	open         func() (Stream, error)
	seekableHint bool

	once   sync.Once
	mu     sync.Mutex
	stream Stream
	err    error
}

// NewLazyOpenIO builds a Stream that calls open on first use. seekableHint
// is returned by Seekable before open has run, since callers (notably
// DecompressorStream's caller) may need to know seekability before paying
// the cost of opening.
func NewLazyOpenIO(seekableHint bool, open func() (Stream, error)) *LazyOpenIO {
	return &LazyOpenIO{open: open, seekableHint: seekableHint}
}

func (l *LazyOpenIO) ensure() (Stream, error) {
	l.once.Do(func() {
		l.stream, l.err = l.open()
	})
	return l.stream, l.err
}

func (l *LazyOpenIO) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.ensure()
	if err != nil {
		return 0, err
	}
	return s.Read(p)
}

func (l *LazyOpenIO) Seek(offset int64, whence int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.ensure()
	if err != nil {
		return 0, err
	}
	return s.Seek(offset, whence)
}

func (l *LazyOpenIO) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stream == nil {
		return nil
	}
	return l.stream.Close()
}

func (l *LazyOpenIO) Seekable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stream != nil {
		return l.stream.Seekable()
	}
	return l.seekableHint
}

func (l *LazyOpenIO) Size() (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stream == nil {
		return 0, false
	}
	return l.stream.Size()
}
