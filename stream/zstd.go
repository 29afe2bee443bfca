package stream

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterStreamFormat(
		member.StreamZstd,
		[]format.Signature{{Bytes: []byte{0x28, 0xB5, 0x2F, 0xFD}, Offset: 0}},
		[]string{".zst", ".tzst"},
		openZstd,
		nil,
	)
}

// openZstd uses klauspost/compress/zstd, promoted here from an indirect
// teacher dependency to a direct one (spec §1 requires Zstandard support
// that nabbar/golib/archive/compress does not cover — see SPEC_FULL.md §4.3).
//
// klauspost's *zstd.Decoder forbids rewinding its internal window once
// read past, so on a seekable source we use zstdSeekStream (reopen the
// whole Decoder on backward seek) instead of the generic
// DecompressorStream rewind-and-replay.
func openZstd(r io.Reader, _ ...any) (io.ReadCloser, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	if src, seekable := rc.(seekableSource); seekable {
		return newZstdSeekStream(src)
	}
	zr, err := zstd.NewReader(rc)
	if err != nil {
		return nil, errs.New(errs.ErrFormat, "invalid zstd frame header", err)
	}
	return &sequentialAdapter{rc: &zstdCloseAdapter{zr}, closer: rc}, nil
}

// zstdCloseAdapter adapts *zstd.Decoder.Close (no error return) to
// io.Closer.
type zstdCloseAdapter struct{ d *zstd.Decoder }

func (z *zstdCloseAdapter) Read(p []byte) (int, error) { return z.d.Read(p) }
func (z *zstdCloseAdapter) Close() error                { z.d.Close(); return nil }
