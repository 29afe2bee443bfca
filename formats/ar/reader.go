// Package ar implements a minimal reader for the classic Unix `ar` archive
// format (as used by .a static libraries and .deb packages), covering the
// common GNU "//" long-filename table and BSD "#1/<len>" extended-name
// variants described in spec.md §4.6.
//
// No example repository in the retrieved pack carries an AR parser, so
// this is a from-scratch implementation grounded directly on the format
// layout spec.md §4.6 describes rather than on teacher code — recorded as
// a stdlib-only component in DESIGN.md.
package ar

import (
	"io"
	"strconv"
	"strings"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

const (
	globalMagic  = "!<arch>\n"
	headerSize   = 60
	headerEnd    = "`\n"
	gnuTableName = "//"
	bsdPrefix    = "#1/"
)

func init() {
	format.RegisterReader(member.FormatAr,
		[]format.Signature{{Bytes: []byte(globalMagic), Offset: 0}},
		[]string{".a", ".ar", ".deb"},
		archivereader.Factory(Open))
}

type entry struct {
	offset int64
	size   int64
}

type reader struct {
	*archivereader.Base
	src stream.Stream
}

// Open scans src.Stream (which must be seekable, as ar's long-name table
// can appear anywhere and entries reference it only by byte offset) and
// registers one member per archive entry.
func Open(src archivereader.Source, _ archivereader.Options) (archivereader.Reader, error) {
	if src.Stream == nil || !src.Stream.Seekable() {
		return nil, errs.New(errs.ErrStreamNotSeekable, "ar requires a seekable source", nil)
	}
	s := src.Stream
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	magic := make([]byte, len(globalMagic))
	if _, err := io.ReadFull(s, magic); err != nil || string(magic) != globalMagic {
		return nil, errs.New(errs.ErrFormat, "missing ar global header", nil)
	}

	r := &reader{Base: archivereader.NewBase(member.FormatAr), src: s}
	r.BindSelf(r)
	longNames := ""

	for {
		hdr := make([]byte, headerSize)
		n, err := io.ReadFull(s, hdr)
		if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
			break
		}
		if err != nil {
			return nil, errs.New(errs.ErrCorrupted, "truncated ar header", err)
		}
		if string(hdr[58:60]) != headerEnd {
			return nil, errs.New(errs.ErrCorrupted, "bad ar header terminator", nil)
		}

		rawName := strings.TrimRight(string(hdr[0:16]), " ")
		size, err := strconv.ParseInt(strings.TrimSpace(string(hdr[48:58])), 10, 64)
		if err != nil {
			return nil, errs.New(errs.ErrCorrupted, "bad ar size field", err)
		}

		dataOffset, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}

		switch {
		case rawName == gnuTableName:
			buf := make([]byte, size)
			if _, err := io.ReadFull(s, buf); err != nil {
				return nil, errs.New(errs.ErrCorrupted, "truncated ar long-name table", err)
			}
			longNames = string(buf)
			skipToNext(s, 0, size)
		case strings.HasPrefix(rawName, "/") && rawName != "/" && len(rawName) > 1:
			// GNU long-name reference: "/<offset>" into the // table.
			off, err := strconv.Atoi(rawName[1:])
			if err == nil {
				name := nameFromTable(longNames, off)
				registerEntry(r, name, dataOffset, size, hdr)
			}
			skipToNext(s, size, size)
		case strings.HasPrefix(rawName, bsdPrefix):
			nameLen, err := strconv.Atoi(strings.TrimPrefix(rawName, bsdPrefix))
			if err != nil {
				return nil, errs.New(errs.ErrCorrupted, "bad BSD name length", err)
			}
			nameBuf := make([]byte, nameLen)
			if _, err := io.ReadFull(s, nameBuf); err != nil {
				return nil, errs.New(errs.ErrCorrupted, "truncated BSD entry name", err)
			}
			contentSize := size - int64(nameLen)
			contentOffset := dataOffset + int64(nameLen)
			registerEntry(r, string(nameBuf), contentOffset, contentSize, hdr)
			skipToNext(s, contentSize, size)
		default:
			name := strings.TrimSuffix(rawName, "/")
			registerEntry(r, name, dataOffset, size, hdr)
			skipToNext(s, size, size)
		}
	}

	r.SetInfo(&member.ArchiveInfo{Format: member.FormatAr})
	r.SetState(archivereader.StateOpen)
	return r, nil
}

func nameFromTable(table string, offset int) string {
	if offset < 0 || offset >= len(table) {
		return ""
	}
	rest := table[offset:]
	if i := strings.IndexAny(rest, "\n"); i >= 0 {
		return strings.TrimRight(rest[:i], "/")
	}
	return strings.TrimRight(rest, "/")
}

func registerEntry(r *reader, name string, offset, size int64, hdr []byte) {
	sz := size
	m := &member.ArchiveMember{
		Filename: name,
		FileSize: &sz,
		Type:     member.TypeFile,
		RawInfo:  &entry{offset: offset, size: size},
	}
	r.Register(m)
}

// skipToNext advances past the remaining unread bytes of an entry's data
// section, plus the 1-byte alignment pad ar applies whenever the entry's
// total size (header's size field) is odd.
func skipToNext(s stream.Stream, remaining, total int64) {
	_, _ = s.Seek(remaining+total%2, io.SeekCurrent)
}

func (r *reader) Open(m *member.ArchiveMember) (stream.Stream, error) {
	if err := r.CheckOpen(); err != nil {
		return nil, err
	}
	e, ok := m.RawInfo.(*entry)
	if !ok {
		return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, nil)
	}
	return &arMember{src: r.src, offset: e.offset, size: e.size}, nil
}

type arMember struct {
	src          stream.Stream
	offset, size int64
	pos          int64
}

func (a *arMember) Read(p []byte) (int, error) {
	if a.pos >= a.size {
		return 0, io.EOF
	}
	if _, err := a.src.Seek(a.offset+a.pos, io.SeekStart); err != nil {
		return 0, err
	}
	remaining := a.size - a.pos
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := a.src.Read(p)
	a.pos += int64(n)
	return n, err
}

func (a *arMember) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = a.pos + offset
	case io.SeekEnd:
		target = a.size + offset
	default:
		return a.pos, errs.New(errs.ErrIO, "invalid whence", nil)
	}
	if target < 0 || target > a.size {
		return a.pos, errs.New(errs.ErrIO, "seek out of member bounds", nil)
	}
	a.pos = target
	return a.pos, nil
}

func (a *arMember) Seekable() bool { return true }

func (a *arMember) Size() (int64, bool) { return a.size, true }

func (a *arMember) Close() error { return nil }

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
		err = fn(m, s)
		_ = s.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) Close() error {
	_ = r.src.Close()
	return r.Base.Close()
}
