package stream

import (
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterStreamFormat(
		member.StreamLz4,
		[]format.Signature{{Bytes: []byte{0x04, 0x22, 0x4D, 0x18}, Offset: 0}},
		[]string{".lz4", ".tlz4"},
		openLz4,
		nil,
	)
}

// openLz4 is grounded on nabbar/golib/archive/compress/io.go's
// Algorithm.Reader case for LZ4 (github.com/pierrec/lz4/v4).
func openLz4(r io.Reader, _ ...any) (io.ReadCloser, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	if src, seekable := rc.(seekableSource); seekable {
		return NewDecompressorStream(src, func(r io.Reader) (io.Reader, error) {
			return lz4.NewReader(r), nil
		}), nil
	}
	return &sequentialAdapter{rc: lz4.NewReader(rc), closer: rc}, nil
}
