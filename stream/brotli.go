package stream

import (
	"io"

	"github.com/andybalholm/brotli"

	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

const brotliProbeSize = 256

func init() {
	// Brotli carries no magic bytes (spec §4.1), so it registers with no
	// Signature and relies solely on the extra probe detector below plus
	// filename-extension fallback.
	format.RegisterStreamFormat(
		member.StreamBrotli,
		nil,
		[]string{".br"},
		openBrotli,
		probeBrotli,
	)
}

// openBrotli wraps andybalholm/brotli.NewReader, promoted from an indirect
// teacher dependency to a direct one (spec §1 requires Brotli support that
// nabbar/golib/archive/compress does not cover — see SPEC_FULL.md §4.3).
// brotli.Reader has no native seek support, so seekable inputs go through
// the generic DecompressorStream rewind-and-replay wrapper.
func openBrotli(r io.Reader, _ ...any) (io.ReadCloser, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	if src, seekable := rc.(seekableSource); seekable {
		return NewDecompressorStream(src, func(r io.Reader) (io.Reader, error) {
			return brotli.NewReader(r), nil
		}), nil
	}
	return &sequentialAdapter{rc: brotli.NewReader(rc), closer: rc}, nil
}

// probeBrotli decompresses up to brotliProbeSize bytes to decide whether r
// looks like a Brotli stream, per spec §4.1's "probe-decompress" detection
// rule for signature-less formats. It restores r's position before
// returning, as format.ExtraDetector requires.
func probeBrotli(r io.ReadSeeker) bool {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return false
	}
	defer func() { _, _ = r.Seek(start, io.SeekStart) }()

	br := brotli.NewReader(r)
	buf := make([]byte, brotliProbeSize)
	n, err := br.Read(buf)
	return n > 0 && (err == nil || err == io.EOF)
}
