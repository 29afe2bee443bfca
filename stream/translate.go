package stream

import "io"

// ExceptionTranslatingIO wraps a Stream so every error it raises passes
// through a single translator, uniformly mapping a backend's native errors
// into archivey's errs taxonomy. It is grounded on the customizable-hook
// wrapper pattern of nabbar/golib/ioutils/iowrapper (there, SetRead/SetWrite/
// SetSeek/SetClose intercept each operation; here a single Translate func
// intercepts every operation's returned error instead of the data itself).
type ExceptionTranslatingIO struct {
	inner     Stream
	translate func(error) error
}

// NewExceptionTranslatingIO wraps inner so every non-nil error it returns
// passes through translate before reaching the caller.
func NewExceptionTranslatingIO(inner Stream, translate func(error) error) *ExceptionTranslatingIO {
	return &ExceptionTranslatingIO{inner: inner, translate: translate}
}

func (e *ExceptionTranslatingIO) Read(p []byte) (int, error) {
	n, err := e.inner.Read(p)
	if err != nil && err != io.EOF {
		return n, e.translate(err)
	}
	return n, err
}

func (e *ExceptionTranslatingIO) Seek(offset int64, whence int) (int64, error) {
	n, err := e.inner.Seek(offset, whence)
	if err != nil {
		return n, e.translate(err)
	}
	return n, err
}

func (e *ExceptionTranslatingIO) Close() error {
	if err := e.inner.Close(); err != nil {
		return e.translate(err)
	}
	return nil
}

func (e *ExceptionTranslatingIO) Seekable() bool { return e.inner.Seekable() }

func (e *ExceptionTranslatingIO) Size() (int64, bool) { return e.inner.Size() }
