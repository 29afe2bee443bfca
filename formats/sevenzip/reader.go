// Package sevenzip registers 7-Zip's signature and extension so Detect
// resolves FormatSevenZip correctly, but intentionally does not decode its
// proprietary compression. No 7-Zip codec library exists anywhere in the
// retrieved example pack, so Open fails with ErrNotSupported rather than
// silently mis-registering the format — recorded in DESIGN.md per the same
// reasoning as package rar.
package sevenzip

import (
	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
)

func init() {
	format.RegisterReader(member.FormatSevenZip,
		[]format.Signature{{Bytes: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}, Offset: 0}},
		[]string{".7z"},
		archivereader.Factory(Open))
}

// Open always fails: decoding 7-Zip's compression is out of scope (see
// package doc comment).
func Open(archivereader.Source, archivereader.Options) (archivereader.Reader, error) {
	return nil, errs.New(errs.ErrNotSupported, "7-Zip decoding is not implemented; format detection only", nil)
}
