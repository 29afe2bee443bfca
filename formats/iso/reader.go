// Package iso implements a minimal ISO-9660 reader: it parses the Primary
// Volume Descriptor at sector 16 and walks the root directory's extent
// list recursively, per spec.md §4.6's note that "ISO-9660's primary
// volume descriptor + flat extent list is readable with plain binary
// parsing" even though this pack has no ISO-9660 library to wire in. RAR
// and 7-Zip cannot get the same treatment (they need proprietary
// compression codecs); ISO-9660 content is stored uncompressed, so a
// direct binary walk is enough to read member names and extents.
package iso

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

const (
	sectorSize   = 2048
	pvdSector    = 16
	isoMagic     = "CD001"
	dirFlagDir   = 0x02
)

func init() {
	format.RegisterReader(member.FormatIso,
		[]format.Signature{{Bytes: []byte(isoMagic), Offset: pvdSector*sectorSize + 1}},
		[]string{".iso"},
		archivereader.Factory(Open))
}

type entry struct {
	extent int64
	size   int64
}

type reader struct {
	*archivereader.Base
	src stream.Stream
}

// Open parses the Primary Volume Descriptor and recursively registers
// every member of the root directory tree.
func Open(src archivereader.Source, _ archivereader.Options) (archivereader.Reader, error) {
	if src.Stream == nil || !src.Stream.Seekable() {
		return nil, errs.New(errs.ErrStreamNotSeekable, "iso requires a seekable source", nil)
	}
	s := src.Stream

	pvd := make([]byte, sectorSize)
	if _, err := s.Seek(pvdSector*sectorSize, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(s, pvd); err != nil {
		return nil, errs.New(errs.ErrCorrupted, "truncated primary volume descriptor", err)
	}
	if pvd[0] != 1 || string(pvd[1:6]) != isoMagic {
		return nil, errs.New(errs.ErrFormat, "missing ISO-9660 primary volume descriptor", nil)
	}

	// Root directory record starts at offset 156 within the PVD, 34 bytes
	// long (ECMA-119 §8.4.8): extent at [2:10] (little+big endian uint32
	// pair), data length at [10:18].
	root := pvd[156:190]
	rootExtent := int64(binary.LittleEndian.Uint32(root[2:6]))
	rootSize := int64(binary.LittleEndian.Uint32(root[10:14]))

	r := &reader{Base: archivereader.NewBase(member.FormatIso), src: s}
	r.BindSelf(r)
	if err := r.walkDir(rootExtent, rootSize, ""); err != nil {
		return nil, err
	}
	r.SetInfo(&member.ArchiveInfo{Format: member.FormatIso})
	r.SetState(archivereader.StateOpen)
	return r, nil
}

// walkDir reads one directory's extent (a sequence of variable-length
// directory records) and recurses into subdirectories, skipping the
// synthetic "." and ".." self/parent entries.
func (r *reader) walkDir(extent, size int64, prefix string) error {
	buf := make([]byte, size)
	if _, err := r.src.Seek(extent*sectorSize, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return errs.New(errs.ErrCorrupted, "truncated ISO directory extent", err)
	}

	for off := 0; off < len(buf); {
		length := int(buf[off])
		if length == 0 {
			// Directory records never span a sector boundary; a zero
			// length byte means "skip to the next sector".
			off = ((off / sectorSize) + 1) * sectorSize
			continue
		}
		rec := buf[off : off+length]
		childExtent := int64(binary.LittleEndian.Uint32(rec[2:6]))
		childSize := int64(binary.LittleEndian.Uint32(rec[10:14]))
		flags := rec[25]
		nameLen := int(rec[32])
		name := string(rec[33 : 33+nameLen])
		off += length

		if name == "\x00" || name == "\x01" {
			continue // "." and ".."
		}
		// Strip the ";1" version suffix ISO-9660 appends to file names.
		if i := strings.IndexByte(name, ';'); i >= 0 {
			name = name[:i]
		}

		full := name
		if prefix != "" {
			full = prefix + "/" + name
		}

		isDir := flags&dirFlagDir != 0
		m := &member.ArchiveMember{Filename: full}
		if isDir {
			m.Type = member.TypeDir
			m.Filename += "/"
		} else {
			m.Type = member.TypeFile
			m.FileSize = &childSize
			m.RawInfo = &entry{extent: childExtent, size: childSize}
		}
		r.Register(m)

		if isDir {
			if err := r.walkDir(childExtent, childSize, full); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *reader) Open(m *member.ArchiveMember) (stream.Stream, error) {
	if err := r.CheckOpen(); err != nil {
		return nil, err
	}
	e, ok := m.RawInfo.(*entry)
	if !ok {
		return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, nil)
	}
	return &isoMember{src: r.src, offset: e.extent * sectorSize, size: e.size}, nil
}

type isoMember struct {
	src          stream.Stream
	offset, size int64
	pos          int64
}

func (m *isoMember) Read(p []byte) (int, error) {
	if m.pos >= m.size {
		return 0, io.EOF
	}
	if _, err := m.src.Seek(m.offset+m.pos, io.SeekStart); err != nil {
		return 0, err
	}
	remaining := m.size - m.pos
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := m.src.Read(p)
	m.pos += int64(n)
	return n, err
}

func (m *isoMember) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = m.size + offset
	default:
		return m.pos, errs.New(errs.ErrIO, "invalid whence", nil)
	}
	if target < 0 || target > m.size {
		return m.pos, errs.New(errs.ErrIO, "seek out of member bounds", nil)
	}
	m.pos = target
	return m.pos, nil
}

func (m *isoMember) Seekable() bool { return true }

func (m *isoMember) Size() (int64, bool) { return m.size, true }

func (m *isoMember) Close() error { return nil }

func (r *reader) IterMembersWithIO(fn archivereader.MemberFunc) error {
	if err := r.CheckOpen(); err != nil {
		return err
	}
	members, _ := r.GetMembers()
	for _, m := range members {
		if m.Type != member.TypeFile {
			if err := fn(m, nil); err != nil {
				return err
			}
			continue
		}
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
