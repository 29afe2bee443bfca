// Package stream is the Stream Handler Layer (C3) and IO Helpers (C4): a
// single Stream contract every compressor and adapter implements, composed
// by wrapping rather than inheritance, per spec §4.3 and the REDESIGN FLAGS
// in spec §9 ("replace with a single trait/interface Stream{read, seek,
// close, seekable, size?} and compose via wrapper structs").
package stream

import "io"

// Stream is the unified contract every decompressed byte stream in
// archivey satisfies, whether the underlying backend is natively seekable
// (zip, tar over a seekable file) or purely sequential (gzip, brotli).
type Stream interface {
	io.Reader
	io.Closer

	// Seek behaves like io.Seeker when Seekable() is true. When false, it
	// always returns ErrStreamNotSeekable (spec §8 property #3).
	Seek(offset int64, whence int) (int64, error)

	// Seekable reports whether Seek can succeed. It never changes over
	// the life of the stream.
	Seekable() bool

	// Size returns the total decompressed size if known without a full
	// decode, and false otherwise. DecompressorStream populates it lazily
	// the first time SeekEnd is requested (spec §4.3).
	Size() (int64, bool)
}

// nonSeekable is embedded by wrappers over purely sequential sources; it
// supplies the Seek/Seekable pair spec §4.3/§8 requires of a non-seekable
// backend without repeating the same three lines in every file.
type nonSeekable struct{}

func (nonSeekable) Seekable() bool { return false }

func (nonSeekable) Seek(int64, int) (int64, error) {
	return 0, errStreamNotSeekable()
}
