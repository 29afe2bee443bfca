// Package errs defines archivey's closed error taxonomy.
//
// It is a small, single-package adaptation of the CodeError + message-
// registry pattern used across nabbar/golib/errors, trimmed down from that
// package's cross-subsystem Min* numbering (one range per monorepo package)
// to the flat numbering archivey needs for its own handful of error kinds.
package errs

import "fmt"

// CodeError is a closed, numeric error kind, analogous to an HTTP status
// code. Values are stable and never reused.
type CodeError uint16

const (
	// UnknownError is returned when no specific kind applies.
	UnknownError CodeError = iota
	ErrFormat
	ErrCorrupted
	ErrEncrypted
	ErrEOF
	ErrMemberNotFound
	ErrMemberCannotBeOpened
	ErrNotSupported
	ErrStreamNotSeekable
	ErrIO
	ErrFileExists
	ErrLinkTargetNotFound
	ErrPackageNotInstalled
	ErrClosed
)

var messages = map[CodeError]string{
	UnknownError:            "unknown error",
	ErrFormat:               "unrecognized or malformed archive header",
	ErrCorrupted:            "archive data failed an integrity check",
	ErrEncrypted:            "member is encrypted and no valid password was supplied",
	ErrEOF:                  "archive input truncated before expected end",
	ErrMemberNotFound:       "no member matches the given name or id",
	ErrMemberCannotBeOpened: "member cannot be opened as a byte stream",
	ErrNotSupported:         "format or operation is not supported by this reader",
	ErrStreamNotSeekable:    "backend requires seeking on a non-seekable source",
	ErrIO:                   "underlying I/O operation failed",
	ErrFileExists:           "extraction target already exists",
	ErrLinkTargetNotFound:   "hardlink target was not found among extracted members",
	ErrPackageNotInstalled:  "optional backend is not registered",
	ErrClosed:               "reader or stream already closed",
}

// Message returns the human-readable description registered for c, or the
// generic unknown-error message if c carries none.
func (c CodeError) Message() string {
	if m, ok := messages[c]; ok && m != "" {
		return m
	}
	return messages[UnknownError]
}

func (c CodeError) String() string {
	return fmt.Sprintf("%d", uint16(c))
}
