package stream

import (
	"compress/bzip2"
	"io"

	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterStreamFormat(
		member.StreamBzip2,
		[]format.Signature{{Bytes: []byte{'B', 'Z', 'h'}, Offset: 0}},
		[]string{".bz2", ".tbz2", ".tbz"},
		openBzip2,
		nil,
	)
}

// openBzip2 decodes via the stdlib compress/bzip2 reader, the same choice
// nabbar/golib/archive/compress/io.go makes for decoding — that package
// only reaches for a third-party bzip2 package on its write side, and
// archivey is read-only, so there is nothing here for such a library to
// do (see DESIGN.md).
func openBzip2(r io.Reader, _ ...any) (io.ReadCloser, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	if src, seekable := rc.(seekableSource); seekable {
		return NewDecompressorStream(src, func(r io.Reader) (io.Reader, error) {
			return bzip2.NewReader(r), nil
		}), nil
	}
	return &sequentialAdapter{rc: bzip2.NewReader(rc), closer: rc}, nil
}
