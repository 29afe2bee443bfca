package stream

import (
	"io"

	"github.com/nabbar/archivey/errs"
)

func errStreamNotSeekable() error {
	return errs.New(errs.ErrStreamNotSeekable, "backend has no native seek support", nil)
}

func errTruncated(cause error) error {
	return errs.New(errs.ErrEOF, "truncated input", cause)
}

func errCorrupted(cause error) error {
	return errs.New(errs.ErrCorrupted, "decompression failed", cause)
}

// translateCommon maps the handful of stdlib/ecosystem decompressor errors
// that recur across every backend (spec §4.3's "exception translator").
// Backend-specific translators wrap this for anything they recognize
// beyond it.
func translateCommon(err error) error {
	switch {
	case err == nil:
		return nil
	case err == io.EOF:
		return err
	case err == io.ErrUnexpectedEOF:
		return errTruncated(err)
	default:
		return err
	}
}
