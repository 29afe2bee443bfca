// Package singlefile wraps a bare compressor stream (gzip, bzip2, xz,
// zstd, lz4, brotli, zlib, Unix compress) as a one-member pseudo-archive,
// per spec.md §3's SingleFileCompressed set. Grounded on
// nabbar/golib/archive/extract.go's ExtractAll recursion, which derives
// the inner filename the same way:
// strings.TrimSuffix(filepath.Base(name), algo.Extension()).
package singlefile

import (
	"path/filepath"
	"strings"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

func init() {
	for _, f := range []member.ArchiveFormat{
		member.FormatGzip, member.FormatBzip2, member.FormatXz,
		member.FormatZstd, member.FormatLz4, member.FormatBrotli,
		member.FormatCompressZ,
	} {
		format.RegisterReader(f, nil, nil, archivereader.Factory(Open))
	}
}

var extensionOf = map[member.ArchiveFormat]string{
	member.FormatGzip:      ".gz",
	member.FormatBzip2:     ".bz2",
	member.FormatXz:        ".xz",
	member.FormatZstd:      ".zst",
	member.FormatLz4:       ".lz4",
	member.FormatBrotli:    ".br",
	member.FormatCompressZ: ".z",
}

// Open builds a Reader exposing exactly one member: the decompressed
// content of src.Stream.
func Open(src archivereader.Source, _ archivereader.Options) (archivereader.Reader, error) {
	if src.Stream == nil {
		return nil, errs.New(errs.ErrNotSupported, "single-file compressor requires a decoded byte stream", nil)
	}

	name := filepath.Base(src.Name)
	if ext, ok := extensionOf[src.Format]; ok {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" {
		name = "data"
	}

	r := &reader{Base: archivereader.NewBase(src.Format), src: src.Stream}
	r.BindSelf(r)
	size, sizeOK := src.Stream.Size()
	m := &member.ArchiveMember{Filename: name, Type: member.TypeFile}
	if sizeOK {
		m.FileSize = &size
	}
	r.Register(m)
	r.SetInfo(&member.ArchiveInfo{Format: src.Format})
	r.SetState(archivereader.StateOpen)
	return r, nil
}

type reader struct {
	*archivereader.Base
	src    stream.Stream
	opened bool
}

func (r *reader) Open(m *member.ArchiveMember) (stream.Stream, error) {
	if err := r.CheckOpen(); err != nil {
		return nil, err
	}
	if r.opened {
		return nil, errs.New(errs.ErrNotSupported, "single-file member already opened once", nil)
	}
	r.opened = true
	return r.src, nil
}

func (r *reader) IterMembersWithIO(fn archivereader.MemberFunc) error {
	if err := r.CheckOpen(); err != nil {
		return err
	}
	members, _ := r.GetMembers()
	for _, m := range members {
		s, err := r.Open(m)
		if err != nil {
			return err
		}
		if err := fn(m, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) Close() error {
	_ = r.src.Close()
	return r.Base.Close()
}
