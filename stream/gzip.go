package stream

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterStreamFormat(
		member.StreamGzip,
		[]format.Signature{{Bytes: []byte{0x1f, 0x8b}, Offset: 0}},
		[]string{".gz", ".tgz"},
		openGzip,
		nil,
	)
}

// openGzip is grounded on nabbar/golib/archive/compress/io.go's
// Algorithm.Reader case for Gzip, generalized to return the seekable
// Stream contract via DecompressorStream since compress/gzip.Reader has no
// native Seek.
func openGzip(r io.Reader, _ ...any) (io.ReadCloser, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	src, seekable := rc.(seekableSource)
	if !seekable {
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, translateGzipErr(err)
		}
		return &sequentialAdapter{rc: zr, closer: rc}, nil
	}

	return NewDecompressorStream(src, func(r io.Reader) (io.Reader, error) {
		return gzip.NewReader(r)
	}), nil
}

func translateGzipErr(err error) error {
	if err == gzip.ErrHeader || err == gzip.ErrChecksum {
		return errs.New(errs.ErrCorrupted, "gzip header/checksum invalid", err)
	}
	return translateCommon(err)
}

// GzipMetadata extracts the FNAME field a gzip header may carry, used by
// archivey.Open to name a single-file gzip member when
// Config.UseStoredMetadata is set. MTIME and the comment are not returned.
func GzipMetadata(r io.Reader) (name string, hasName bool, ok bool) {
	buf, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil && len(buf) == 0 {
		return "", false, false
	}
	zr, err := gzip.NewReader(bytes.NewReader(buf))
	if err != nil {
		return "", false, false
	}
	defer zr.Close()
	return zr.Name, zr.Name != "", true
}
