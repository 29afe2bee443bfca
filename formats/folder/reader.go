// Package folder treats a plain directory as the FOLDER pseudo-archive
// from spec.md §3/§4.6: every regular file, directory and symlink under
// the root becomes a member, walked with the stdlib filepath.WalkDir.
package folder

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

func init() {
	format.RegisterReader(member.FormatFolder, nil, nil, archivereader.Factory(Open))
}

type fileEntry struct {
	path string
}

// Open walks src.Path once, registering every entry as a member. A fresh
// os.File is opened per member on demand rather than all at once.
func Open(src archivereader.Source, _ archivereader.Options) (archivereader.Reader, error) {
	if src.Path == "" {
		return nil, errs.New(errs.ErrNotSupported, "folder reader requires a filesystem path", nil)
	}

	r := &reader{Base: archivereader.NewBase(member.FormatFolder), root: src.Path}
	r.BindSelf(r)
	err := filepath.WalkDir(src.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == src.Path {
			return nil
		}
		rel, err := filepath.Rel(src.Path, p)
		if err != nil {
			return err
		}
		m, err := toMember(p, rel, d)
		if err != nil {
			return err
		}
		m.RawInfo = &fileEntry{path: p}
		r.Register(m)
		return nil
	})
	if err != nil {
		return nil, errs.New(errs.ErrIO, "walking folder", err)
	}
	r.SetInfo(&member.ArchiveInfo{Format: member.FormatFolder})
	r.SetState(archivereader.StateOpen)
	return r, nil
}

func toMember(fullPath, rel string, d fs.DirEntry) (*member.ArchiveMember, error) {
	info, err := d.Info()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	mt := info.ModTime()
	name := filepath.ToSlash(rel)

	m := &member.ArchiveMember{
		Filename: name,
		FileSize: &size,
		ModTime:  &mt,
		Mode:     uint32(info.Mode().Perm()),
	}

	switch {
	case d.IsDir():
		m.Type = member.TypeDir
		m.Filename += "/"
	case info.Mode()&os.ModeSymlink != 0:
		m.Type = member.TypeSymlink
		target, err := os.Readlink(fullPath)
		if err == nil {
			m.LinkTarget = target
		}
	default:
		m.Type = member.TypeFile
	}
	return m, nil
}

type reader struct {
	*archivereader.Base
	root string
}

func (r *reader) Open(m *member.ArchiveMember) (stream.Stream, error) {
	if err := r.CheckOpen(); err != nil {
		return nil, err
	}
	e, ok := m.RawInfo.(*fileEntry)
	if !ok || m.Type != member.TypeFile {
		return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, nil)
	}
	f, err := os.Open(e.path)
	if err != nil {
		return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, err)
	}
	return &seekableFile{f: f}, nil
}

// seekableFile adapts *os.File to Stream; unlike most backends here it is
// natively seekable, so Seek/Size delegate directly instead of going
// through DecompressorStream.
type seekableFile struct{ f *os.File }

func (s *seekableFile) Read(p []byte) (int, error) { return s.f.Read(p) }

func (s *seekableFile) Seek(offset int64, whence int) (int64, error) { return s.f.Seek(offset, whence) }

func (s *seekableFile) Seekable() bool { return true }

func (s *seekableFile) Size() (int64, bool) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

func (s *seekableFile) Close() error { return s.f.Close() }

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

func (r *reader) Close() error { return r.Base.Close() }
