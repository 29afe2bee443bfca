package stream

// ErrorIOStream is a Stream stub that raises a single pre-stored error on
// every Read and Seek, used by the member-open and extraction paths to
// surface "this member could not be opened" (spec §4.5, §7) as a stream
// value rather than failing the whole archive open. Grounded on the same
// pluggable-failure-function idea as nabbar/golib/ioutils/iowrapper's
// SetRead/SetSeek hooks, specialized to a single fixed error.
type ErrorIOStream struct {
	err error
}

func NewErrorIOStream(err error) *ErrorIOStream {
	return &ErrorIOStream{err: err}
}

func (e *ErrorIOStream) Read([]byte) (int, error) { return 0, e.err }

func (e *ErrorIOStream) Seek(int64, int) (int64, error) { return 0, e.err }

func (e *ErrorIOStream) Close() error { return nil }

func (e *ErrorIOStream) Seekable() bool { return false }

func (e *ErrorIOStream) Size() (int64, bool) { return 0, false }
