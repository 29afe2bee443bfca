package stream

import (
	"compress/lzw"
	"io"

	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterStreamFormat(
		member.StreamUnixCompress,
		[]format.Signature{{Bytes: []byte{0x1F, 0x9D}, Offset: 0}},
		[]string{".z"},
		openUnixCompress,
		nil,
	)
}

// openUnixCompress decodes the classic Unix `compress` (.Z) format, which
// none of the example repos carry a dedicated library for. It is built
// directly on the stdlib compress/lzw variable-width decoder — justified
// in DESIGN.md as a stdlib-only implementation since no ecosystem package
// in the retrieved pack targets this format specifically.
func openUnixCompress(r io.Reader, _ ...any) (io.ReadCloser, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	if src, seekable := rc.(seekableSource); seekable {
		return NewDecompressorStream(src, func(r io.Reader) (io.Reader, error) {
			return newUnixCompressReader(r), nil
		}), nil
	}
	return &sequentialAdapter{rc: newUnixCompressReader(rc), closer: rc}, nil
}

// newUnixCompressReader skips the 2-byte magic plus the flags byte (max
// code width / block-mode bit) before handing off to the stdlib LZW
// decoder in LSB-first order, which matches compress(1)'s bit packing.
func newUnixCompressReader(r io.Reader) io.Reader {
	return &unixCompressReader{src: r}
}

type unixCompressReader struct {
	src     io.Reader
	inner   io.ReadCloser
	started bool
}

func (u *unixCompressReader) Read(p []byte) (int, error) {
	if !u.started {
		header := make([]byte, 3)
		if _, err := io.ReadFull(u.src, header); err != nil {
			return 0, translateCommon(err)
		}
		maxWidth := int(header[2] & 0x1F)
		u.inner = lzw.NewReader(u.src, lzw.LSB, maxWidth)
		u.started = true
	}
	n, err := u.inner.Read(p)
	return n, translateCommon(err)
}
