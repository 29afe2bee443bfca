// Package rar registers RAR's signature and extension so Detect resolves
// FormatRar correctly, but intentionally does not decode RAR's proprietary
// compression. No RAR codec library exists anywhere in the retrieved
// example pack (checked against every go.mod under _examples/), so Open
// fails with ErrNotSupported rather than silently mis-registering the
// format — recorded in DESIGN.md per spec.md §1's "per-format parsers
// themselves are out of scope" for formats this pack cannot provide a
// codec for.
package rar

import (
	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterReader(member.FormatRar,
		[]format.Signature{
			{Bytes: []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}, Offset: 0}, // RAR 1.5-4.x
			{Bytes: []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, Offset: 0}, // RAR 5.0+
		},
		[]string{".rar"},
		archivereader.Factory(Open))
}

// Open always fails: decoding RAR's compression is out of scope (see
// package doc comment).
func Open(archivereader.Source, archivereader.Options) (archivereader.Reader, error) {
	return nil, errs.New(errs.ErrNotSupported, "RAR decoding is not implemented; format detection only", nil)
}
