package stream

import (
	"compress/zlib"
	"io"

	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterStreamFormat(
		member.StreamZlib,
		[]format.Signature{
			{Bytes: []byte{0x78, 0x01}, Offset: 0},
			{Bytes: []byte{0x78, 0x9C}, Offset: 0},
			{Bytes: []byte{0x78, 0xDA}, Offset: 0},
		},
		[]string{".zlib"},
		openZlib,
		nil,
	)
}

// openZlib uses the stdlib compress/zlib reader, the same backend-without-
// native-seeking case DecompressorStream's doc comment names alongside
// Brotli (spec §4.3). The three signatures cover the common zlib header
// compression-level/check-bit combinations (no-compression, default,
// best-compression).
func openZlib(r io.Reader, _ ...any) (io.ReadCloser, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	if src, seekable := rc.(seekableSource); seekable {
		return NewDecompressorStream(src, func(r io.Reader) (io.Reader, error) {
			return zlib.NewReader(r)
		}), nil
	}
	zr, err := zlib.NewReader(rc)
	if err != nil {
		return nil, translateCommon(err)
	}
	return &sequentialAdapter{rc: zr, closer: rc}, nil
}
