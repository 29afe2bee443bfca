package archivereader

import (
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

// Advance produces the next member of a streaming-only archive along with
// its content Stream (nil for directories/links). ok is false once the
// archive is exhausted; err carries any scan failure.
type Advance func() (m *member.ArchiveMember, io stream.Stream, ok bool, err error)

// Streaming is the wrapper spec.md §4.5/§5 describes for sources that
// cannot seek (e.g. TAR piped over a non-seekable compressor, or any
// reader opened over a plain io.Reader): it refuses every random-access
// operation and invalidates the previously yielded member's Stream the
// moment iteration advances, since rewinding to reread it is impossible.
type Streaming struct {
	*Base
	advance Advance

	cur    stream.Stream
	curID  member.ID
	haveID bool
}

// NewStreaming wraps advance behind the Reader contract for format f.
func NewStreaming(f member.ArchiveFormat, advance Advance) *Streaming {
	s := &Streaming{Base: NewBase(f), advance: advance}
	s.BindSelf(s)
	return s
}

// GetMembers is not supported in streaming-only mode: the full member list
// is never known ahead of a complete, single-pass scan.
func (s *Streaming) GetMembers() ([]*member.ArchiveMember, error) {
	return nil, errs.New(errs.ErrNotSupported, "streaming reader has no random-access member list", nil)
}

// GetMember is not supported for the same reason as GetMembers.
func (s *Streaming) GetMember(string) (*member.ArchiveMember, error) {
	return nil, errs.New(errs.ErrNotSupported, "streaming reader cannot look up members by name", nil)
}

// GetMemberByID is not supported in streaming-only mode, for the same
// reason as GetMembers: Base's own by-id index only ever holds members
// already yielded, which would silently misrepresent "not found yet" as
// "doesn't exist".
func (s *Streaming) GetMemberByID(member.ID) (*member.ArchiveMember, error) {
	return nil, errs.New(errs.ErrNotSupported, "streaming reader cannot look up members by id", nil)
}

// Open only succeeds for the member most recently yielded by
// IterMembersWithIO; any other member's Stream has already been
// invalidated.
func (s *Streaming) Open(m *member.ArchiveMember) (stream.Stream, error) {
	if err := s.CheckOpen(); err != nil {
		return nil, err
	}
	if !s.haveID || m.ID != s.curID {
		return nil, errs.New(errs.ErrNotSupported, "streaming reader can only open the current member", nil)
	}
	return s.cur, nil
}

// IterMembersWithIO drives advance, closing each member's Stream before
// fetching the next one per spec.md §5's single-current-stream rule.
func (s *Streaming) IterMembersWithIO(fn MemberFunc) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	s.SetState(StateIterating)
	defer s.SetState(StateIdle)

	for {
		if s.cur != nil {
			_ = s.cur.Close()
			s.cur = nil
		}
		m, io, ok, err := s.advance()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		s.Register(m)
		s.cur = io
		s.curID = m.ID
		s.haveID = true
		if err := fn(m, io); err != nil {
			return err
		}
	}
}

// ResolveLink cannot be supported without random access to the target
// member's content.
func (s *Streaming) ResolveLink(*member.ArchiveMember) (*member.ArchiveMember, error) {
	return nil, errs.New(errs.ErrNotSupported, "streaming reader cannot resolve links", nil)
}

// Close closes the current member stream, if any, then the base.
func (s *Streaming) Close() error {
	if s.cur != nil {
		_ = s.cur.Close()
		s.cur = nil
	}
	return s.Base.Close()
}
