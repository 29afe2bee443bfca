// Package zip adapts the stdlib archive/zip reader to the Reader contract
// (spec.md §4.6), grounded on nabbar/golib/archive/zip/reader.go's
// zip.NewReader(src, size) + per-entry f.Open() pattern, generalized from
// that file's extract-to-disk walk into member registration plus
// on-demand Stream opening.
package zip

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

func init() {
	format.RegisterReader(member.FormatZip, []format.Signature{{Bytes: []byte{'P', 'K', 0x03, 0x04}, Offset: 0}}, []string{".zip"}, archivereader.Factory(Open))
}

type reader struct {
	*archivereader.Base
	zr *zip.Reader
	rc io.Closer
}

// Open scans src.ReaderAt (which must support random access) as a ZIP
// archive and returns a Reader giving random-access Open by member.
func Open(src archivereader.Source, _ archivereader.Options) (archivereader.Reader, error) {
	if src.ReaderAt == nil {
		return nil, errs.New(errs.ErrNotSupported, "zip requires a random-access source", nil)
	}
	zr, err := zip.NewReader(src.ReaderAt, src.Size)
	if err != nil {
		return nil, errs.New(errs.ErrFormat, "invalid zip central directory", err)
	}

	r := &reader{Base: archivereader.NewBase(member.FormatZip), zr: zr, rc: src.Closer}
	r.BindSelf(r)
	r.SetInfo(&member.ArchiveInfo{Format: member.FormatZip, Comment: zr.Comment})

	for _, f := range zr.File {
		r.Register(toMember(f))
	}
	r.SetState(archivereader.StateOpen)
	return r, nil
}

func toMember(f *zip.File) *member.ArchiveMember {
	fi := f.FileInfo()
	size := int64(f.UncompressedSize64)
	csize := int64(f.CompressedSize64)
	mt := f.Modified

	m := &member.ArchiveMember{
		Filename:     f.Name,
		FileSize:     &size,
		CompressSize: &csize,
		ModTime:      &mt,
		Mode:         uint32(fi.Mode().Perm()),
		CRC32:        f.CRC32,
		Method:       methodName(f.Method),
		Comment:      f.Comment,
		// Encrypted is surfaced from the general-purpose bit flag, bit 0,
		// per spec.md §4.6.
		Encrypted: f.Flags&0x1 != 0,
		RawInfo:   f,
	}

	switch {
	case strings.HasSuffix(f.Name, "/") || fi.IsDir():
		m.Type = member.TypeDir
	case f.ExternalAttrs>>16&0o170000 == 0o120000: // S_IFLNK in the Unix mode kept in the high 16 bits
		m.Type = member.TypeSymlink
	default:
		m.Type = member.TypeFile
	}

	return m
}

func methodName(method uint16) string {
	switch method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return "deflate"
	default:
		return "unknown"
	}
}

func (r *reader) Open(m *member.ArchiveMember) (stream.Stream, error) {
	if err := r.CheckOpen(); err != nil {
		return nil, err
	}
	f, ok := m.RawInfo.(*zip.File)
	if !ok {
		return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, nil)
	}
	if m.Type == member.TypeSymlink {
		rc, err := f.Open()
		if err != nil {
			return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, err)
		}
		target, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, err)
		}
		m.LinkTarget = string(target)
		return stream.NewErrorIOStream(errs.New(errs.ErrMemberCannotBeOpened, "symlink member has no content stream", nil)), nil
	}
	rc, err := f.Open()
	if err != nil {
		if m.Encrypted {
			return nil, errs.New(errs.ErrEncrypted, m.Filename, err)
		}
		return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, err)
	}
	return stream.NewNonSeekableIO(rc), nil
}

func (r *reader) IterMembersWithIO(fn archivereader.MemberFunc) error {
	if err := r.CheckOpen(); err != nil {
		return err
	}
	r.SetState(archivereader.StateIterating)
	defer r.SetState(archivereader.StateIdle)

	members, _ := r.GetMembers()
	for _, m := range members {
		if m.IsDir() {
			if err := fn(m, nil); err != nil {
				return err
			}
			continue
		}
		io, err := r.Open(m)
		if err != nil {
			return err
		}
		err = fn(m, io)
		_ = io.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) Close() error {
	if r.rc != nil {
		_ = r.rc.Close()
	}
	return r.Base.Close()
}
