package stream

import (
	"io"

	"github.com/nabbar/archivey/errs"
)

// seekableSource is what DecompressorStream needs from the raw (still
// compressed) input to support rewind-and-replay.
type seekableSource interface {
	io.Reader
	io.Seeker
	io.Closer
}

// decoderFactory builds a fresh decompressor reading from the start of the
// raw source. DecompressorStream calls it once up front and again on every
// backward seek.
type decoderFactory func(r io.Reader) (io.Reader, error)

const decompressorChunk = 64 * 1024

type decompressorState uint8

const (
	stateInitialized decompressorState = iota
	stateReading
	stateEOF
	stateClosed
)

// DecompressorStream adapts any chunked, purely-sequential decompressor
// (Brotli, zlib, and similar backends without native seeking) into the
// seekable Stream contract, per spec §4.3. It is grounded on the
// buffered, state-tracking engine in
// nabbar/golib/archive/compress/engine.go (that engine already carries a
// state atomic and a *bytes.Buffer surplus; DecompressorStream generalizes
// its Read-side buffering to also support Seek).
type DecompressorStream struct {
	raw     seekableSource
	newDec  decoderFactory
	dec     io.Reader
	state   decompressorState
	pos     int64
	buf     []byte
	size    int64
	sizeOK  bool
	ownsRaw bool
}

// NewDecompressorStream wraps raw with a decoder built by newDec. The
// returned Stream owns raw and closes it on Close.
func NewDecompressorStream(raw seekableSource, newDec decoderFactory) *DecompressorStream {
	return &DecompressorStream{raw: raw, newDec: newDec, ownsRaw: true}
}

func (d *DecompressorStream) ensureOpen() error {
	if d.dec != nil {
		return nil
	}
	if _, err := d.raw.Seek(0, io.SeekStart); err != nil {
		return err
	}
	dec, err := d.newDec(d.raw)
	if err != nil {
		return translateCommon(err)
	}
	d.dec = dec
	d.pos = 0
	d.buf = d.buf[:0]
	d.state = stateInitialized
	return nil
}

func (d *DecompressorStream) Read(p []byte) (int, error) {
	if d.state == stateClosed {
		return 0, errs.New(errs.ErrClosed, "read on closed stream", nil)
	}
	if err := d.ensureOpen(); err != nil {
		return 0, err
	}
	d.state = stateReading

	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		d.pos += int64(n)
		return n, nil
	}

	n, err := d.dec.Read(p)
	d.pos += int64(n)
	if err == io.EOF {
		d.state = stateEOF
		if fl, ok := d.dec.(flusher); ok {
			if !fl.Flush() {
				return n, errTruncated(io.ErrUnexpectedEOF)
			}
		}
	} else if err != nil {
		return n, translateCommon(err)
	}
	return n, err
}

// flusher lets a backend report whether it reached a clean end-of-stream
// marker, used for the "flush the decompressor; if not finished, raise
// ArchiveEOFError" rule in spec §4.3. Most stdlib/ecosystem decoders report
// this implicitly by returning io.ErrUnexpectedEOF instead, in which case
// they simply don't implement flusher and this check is skipped.
type flusher interface {
	Flush() bool
}

// Seek implements the four cases from spec §4.3: forward-within-buffer,
// forward-past-buffer (discard-read), backward (rewind-and-replay), and
// SeekEnd (force full decode to learn size, then cache it).
func (d *DecompressorStream) Seek(offset int64, whence int) (int64, error) {
	if d.state == stateClosed {
		return 0, errs.New(errs.ErrClosed, "seek on closed stream", nil)
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = d.pos + offset
	case io.SeekEnd:
		size, err := d.fullSize()
		if err != nil {
			return d.pos, err
		}
		target = size + offset
	default:
		return d.pos, errs.New(errs.ErrIO, "invalid whence", nil)
	}

	if target < 0 {
		return d.pos, errs.New(errs.ErrIO, "negative seek position", nil)
	}

	if target < d.pos {
		if err := d.rewindTo(target); err != nil {
			return d.pos, err
		}
		return d.pos, nil
	}

	if err := d.discardTo(target); err != nil {
		return d.pos, err
	}
	return d.pos, nil
}

// rewindTo re-seeks the raw input to 0, rebuilds the decoder, and
// discard-reads up to target — "rewind-and-replay" (spec glossary).
func (d *DecompressorStream) rewindTo(target int64) error {
	d.dec = nil
	if err := d.ensureOpen(); err != nil {
		return err
	}
	return d.discardTo(target)
}

func (d *DecompressorStream) discardTo(target int64) error {
	for d.pos < target {
		chunk := decompressorChunk
		if remaining := target - d.pos; remaining < int64(chunk) {
			chunk = int(remaining)
		}
		n, err := d.Read(make([]byte, chunk))
		_ = n
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *DecompressorStream) fullSize() (int64, error) {
	if d.sizeOK {
		return d.size, nil
	}
	if err := d.rewindTo(0); err != nil {
		return 0, err
	}
	buf := make([]byte, decompressorChunk)
	for {
		_, err := d.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	d.size = d.pos
	d.sizeOK = true
	return d.size, nil
}

func (d *DecompressorStream) Seekable() bool { return true }

func (d *DecompressorStream) Size() (int64, bool) {
	if d.sizeOK {
		return d.size, true
	}
	return 0, false
}

// Close closes the underlying raw source if this wrapper opened it.
func (d *DecompressorStream) Close() error {
	if d.state == stateClosed {
		return nil
	}
	d.state = stateClosed
	if d.ownsRaw {
		return d.raw.Close()
	}
	return nil
}

// sequentialAdapter wraps a one-shot (non-seekable) decoder so it still
// satisfies Stream: Seek always fails per the non-seekable contract
// (spec §8 property #3).
type sequentialAdapter struct {
	nonSeekable
	rc     io.Reader
	closer io.Closer
}

func (s *sequentialAdapter) Read(p []byte) (int, error) {
	n, err := s.rc.Read(p)
	return n, translateCommon(err)
}

func (s *sequentialAdapter) Size() (int64, bool) { return 0, false }

func (s *sequentialAdapter) Close() error {
	if c, ok := s.rc.(io.Closer); ok {
		_ = c.Close()
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
