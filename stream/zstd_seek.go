package stream

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/nabbar/archivey/errs"
)

const zstdSeekChunk = 64 * 1024

// zstdSeekStream is DecompressorStream's counterpart specialized for
// klauspost/compress/zstd: that decoder's *Decoder.Reset call is cheap
// (no new goroutines/buffers the way NewReader can allocate), so backward
// seeks reopen via Reset rather than discarding the whole *Decoder and
// building a fresh one, while still implementing the same
// rewind-and-replay contract as DecompressorStream (spec §4.3).
type zstdSeekStream struct {
	raw    seekableSource
	dec    *zstd.Decoder
	pos    int64
	size   int64
	sizeOK bool
	closed bool
}

func newZstdSeekStream(raw seekableSource) (*zstdSeekStream, error) {
	dec, err := zstd.NewReader(raw)
	if err != nil {
		return nil, errs.New(errs.ErrFormat, "invalid zstd frame header", err)
	}
	return &zstdSeekStream{raw: raw, dec: dec}, nil
}

func (z *zstdSeekStream) Read(p []byte) (int, error) {
	if z.closed {
		return 0, errs.New(errs.ErrClosed, "read on closed stream", nil)
	}
	n, err := z.dec.Read(p)
	z.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, translateCommon(err)
	}
	return n, err
}

func (z *zstdSeekStream) Seek(offset int64, whence int) (int64, error) {
	if z.closed {
		return 0, errs.New(errs.ErrClosed, "seek on closed stream", nil)
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = z.pos + offset
	case io.SeekEnd:
		size, err := z.fullSize()
		if err != nil {
			return z.pos, err
		}
		target = size + offset
	default:
		return z.pos, errs.New(errs.ErrIO, "invalid whence", nil)
	}

	if target < 0 {
		return z.pos, errs.New(errs.ErrIO, "negative seek position", nil)
	}

	if target < z.pos {
		if err := z.rewindTo(target); err != nil {
			return z.pos, err
		}
		return z.pos, nil
	}
	if err := z.discardTo(target); err != nil {
		return z.pos, err
	}
	return z.pos, nil
}

func (z *zstdSeekStream) rewindTo(target int64) error {
	if _, err := z.raw.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := z.dec.Reset(z.raw); err != nil {
		return translateCommon(err)
	}
	z.pos = 0
	return z.discardTo(target)
}

func (z *zstdSeekStream) discardTo(target int64) error {
	buf := make([]byte, zstdSeekChunk)
	for z.pos < target {
		chunk := len(buf)
		if remaining := target - z.pos; remaining < int64(chunk) {
			chunk = int(remaining)
		}
		_, err := z.Read(buf[:chunk])
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (z *zstdSeekStream) fullSize() (int64, error) {
	if z.sizeOK {
		return z.size, nil
	}
	if err := z.rewindTo(0); err != nil {
		return 0, err
	}
	buf := make([]byte, zstdSeekChunk)
	for {
		_, err := z.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	z.size = z.pos
	z.sizeOK = true
	return z.size, nil
}

func (z *zstdSeekStream) Seekable() bool { return true }

func (z *zstdSeekStream) Size() (int64, bool) {
	if z.sizeOK {
		return z.size, true
	}
	return 0, false
}

func (z *zstdSeekStream) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true
	z.dec.Close()
	return z.raw.Close()
}
