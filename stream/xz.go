package stream

import (
	"io"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterStreamFormat(
		member.StreamXz,
		[]format.Signature{{Bytes: []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}, Offset: 0}},
		[]string{".xz", ".txz"},
		openXz,
		nil,
	)
}

// openXz is grounded on nabbar/golib/archive/compress/io.go's Algorithm.Reader
// case for XZ (github.com/ulikunitz/xz).
func openXz(r io.Reader, _ ...any) (io.ReadCloser, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	if src, seekable := rc.(seekableSource); seekable {
		return NewDecompressorStream(src, func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		}), nil
	}
	zr, err := xz.NewReader(rc)
	if err != nil {
		return nil, translateXzErr(err)
	}
	return &sequentialAdapter{rc: zr, closer: rc}, nil
}

// translateXzErr maps ulikunitz/xz's string-based errors (the package
// exposes no exported sentinel error values) into archivey's taxonomy by
// message, the same best-effort approach
// nabbar/golib/archive/*/error.go uses for backends without typed errors.
func translateXzErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case err == io.ErrUnexpectedEOF || err == io.EOF:
		return translateCommon(err)
	case strings.Contains(msg, "unexpected end"):
		return errTruncated(err)
	case strings.Contains(msg, "checksum") || strings.Contains(msg, "invalid") || strings.Contains(msg, "corrupt"):
		return errs.New(errs.ErrCorrupted, "xz stream corrupted", err)
	default:
		return translateCommon(err)
	}
}
