// Package tar adapts the stdlib archive/tar reader to the Reader
// contract (spec.md §4.6), grounded on
// nabbar/golib/archive/tar/reader.go's tar.NewReader(src) + r.Next() loop,
// generalized from that file's extract-to-disk walk into either a
// random-access member index (when the underlying stream.Stream is
// seekable) or a single-pass archivereader.Streaming wrapper (when it is
// not).
//
// Header names and link targets are exposed on ArchiveMember exactly as
// the archive stores them, unsanitized — path-traversal rejection and
// normalization happen in archivereader's extraction Filters (Tar/Data),
// the layer spec.md §4.7/§8 describes as the one that raises on a
// violating member. Sanitizing here instead would neutralize a
// `..`-escaping entry before any Filter ever saw it, silently turning the
// spec's "raise, write nothing" scenario into a quiet rename.
package tar

import (
	"archive/tar"
	"errors"
	"io"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

func init() {
	format.RegisterReader(member.FormatTar,
		[]format.Signature{{Bytes: append([]byte("ustar"), 0x00), Offset: 257}},
		[]string{".tar"},
		archivereader.Factory(Open))
}

type entry struct {
	header *tar.Header
	offset int64
	size   int64
}

// Open builds a Reader over src.Stream, a decompressed (if the detector
// applied TAR layering) linear byte stream.
func Open(src archivereader.Source, opts archivereader.Options) (archivereader.Reader, error) {
	if src.Stream == nil {
		return nil, errs.New(errs.ErrNotSupported, "tar requires a decoded byte stream", nil)
	}
	if src.Stream.Seekable() {
		return openSeekable(src.Stream, opts.TarCheckIntegrity)
	}
	return openStreaming(src.Stream, opts.TarCheckIntegrity), nil
}

func toMember(h *tar.Header) *member.ArchiveMember {
	size := h.Size
	mt := h.ModTime

	m := &member.ArchiveMember{
		Filename:     h.Name,
		FileSize:     &size,
		CompressSize: &size,
		ModTime:      &mt,
		Mode:         uint32(h.Mode),
		UID:          h.Uid,
		GID:          h.Gid,
		Uname:        h.Uname,
		Gname:        h.Gname,
		CreateSystem: "unix",
		Extra:        map[string]any{"typeflag": h.Typeflag},
	}

	switch h.Typeflag {
	case tar.TypeDir:
		m.Type = member.TypeDir
	case tar.TypeSymlink:
		m.Type = member.TypeSymlink
		m.LinkTarget = h.Linkname
	case tar.TypeLink:
		m.Type = member.TypeHardlink
		m.LinkTarget = h.Linkname
	default:
		m.Type = member.TypeFile
	}
	return m
}

// --- seekable (random access) path ---

type seekableReader struct {
	*archivereader.Base
	src stream.Stream
}

// openSeekable scans the whole archive up front. When checkIntegrity is
// false, a header/checksum error is treated as end of useful data (the
// members already parsed are kept) rather than aborting the whole open;
// when true (default) it aborts with ErrCorrupted, per spec.md §4.8/§9's
// resolution of tar_check_integrity's scope — a compressor-layer error
// (already surfaced before tar.NewReader ever runs) always propagates
// regardless of this flag.
func openSeekable(src stream.Stream, checkIntegrity bool) (archivereader.Reader, error) {
	r := &seekableReader{Base: archivereader.NewBase(member.FormatTar), src: src}
	r.BindSelf(r)
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	tr := tar.NewReader(src)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !checkIntegrity && (errors.Is(err, tar.ErrHeader) || err == io.ErrUnexpectedEOF) {
				break
			}
			return nil, errs.New(errs.ErrCorrupted, "malformed tar header", err)
		}
		offset, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		m := toMember(h)
		m.RawInfo = &entry{header: h, offset: offset, size: h.Size}
		r.Register(m)
	}
	r.SetInfo(&member.ArchiveInfo{Format: member.FormatTar})
	r.SetState(archivereader.StateOpen)
	return r, nil
}

func (r *seekableReader) Open(m *member.ArchiveMember) (stream.Stream, error) {
	if err := r.CheckOpen(); err != nil {
		return nil, err
	}
	e, ok := m.RawInfo.(*entry)
	if !ok {
		return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, nil)
	}
	if m.Type != member.TypeFile {
		return nil, errs.New(errs.ErrMemberCannotBeOpened, m.Filename, nil)
	}
	return newBoundedStream(r.src, e.offset, e.size), nil
}

func (r *seekableReader) IterMembersWithIO(fn archivereader.MemberFunc) error {
	if err := r.CheckOpen(); err != nil {
		return err
	}
	r.SetState(archivereader.StateIterating)
	defer r.SetState(archivereader.StateIdle)

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

func (r *seekableReader) Close() error {
	_ = r.src.Close()
	return r.Base.Close()
}

// boundedStream clips src to [offset, offset+size), per-member, reusing
// the parent Stream's own Seek rather than re-implementing rewind.
type boundedStream struct {
	src          stream.Stream
	offset, size int64
	pos          int64
}

func newBoundedStream(src stream.Stream, offset, size int64) *boundedStream {
	return &boundedStream{src: src, offset: offset, size: size}
}

func (b *boundedStream) Read(p []byte) (int, error) {
	if b.pos >= b.size {
		return 0, io.EOF
	}
	if _, err := b.src.Seek(b.offset+b.pos, io.SeekStart); err != nil {
		return 0, err
	}
	remaining := b.size - b.pos
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := b.src.Read(p)
	b.pos += int64(n)
	return n, err
}

func (b *boundedStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = b.pos + offset
	case io.SeekEnd:
		target = b.size + offset
	default:
		return b.pos, errs.New(errs.ErrIO, "invalid whence", nil)
	}
	if target < 0 || target > b.size {
		return b.pos, errs.New(errs.ErrIO, "seek out of member bounds", nil)
	}
	b.pos = target
	return b.pos, nil
}

func (b *boundedStream) Seekable() bool { return true }

func (b *boundedStream) Size() (int64, bool) { return b.size, true }

func (b *boundedStream) Close() error { return nil }

// --- streaming (single-pass) path ---

func openStreaming(src stream.Stream, checkIntegrity bool) archivereader.Reader {
	tr := tar.NewReader(src)
	return archivereader.NewStreaming(member.FormatTar, func() (*member.ArchiveMember, stream.Stream, bool, error) {
		h, err := tr.Next()
		if err == io.EOF {
			return nil, nil, false, nil
		}
		if err != nil {
			if !checkIntegrity && (errors.Is(err, tar.ErrHeader) || err == io.ErrUnexpectedEOF) {
				return nil, nil, false, nil
			}
			return nil, nil, false, errs.New(errs.ErrCorrupted, "malformed tar header", err)
		}
		m := toMember(h)
		if m.Type != member.TypeFile {
			return m, nil, true, nil
		}
		return m, stream.NewNonSeekableIO(tr), true, nil
	})
}
