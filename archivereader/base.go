package archivereader

import (
	"fmt"
	"sync"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/member"
)

// State is the reader lifecycle from spec.md §4.5:
// NEW -> OPEN -> (ITERATING <-> IDLE) -> CLOSED.
type State uint8

const (
	StateNew State = iota
	StateOpen
	StateIterating
	StateIdle
	StateClosed
)

// Base is embedded by every per-format adapter in formats/. It owns the
// member registry (name index + archive-order slice), the per-archive ID
// allocator, and the lifecycle state, so each adapter only has to
// implement format-specific scanning/opening.
type Base struct {
	mu sync.Mutex

	format    member.ArchiveFormat
	archiveID int64
	ids       member.Allocator

	state   State
	members []*member.ArchiveMember
	byName  map[string]*member.ArchiveMember
	byID    map[member.ID]*member.ArchiveMember

	info *member.ArchiveInfo

	// self is the concrete Reader embedding this Base, bound once via
	// BindSelf right after construction. Extract/ExtractAll need it to call
	// back into the format-specific Open/IterMembersWithIO that Base itself
	// does not implement.
	self Reader
}

// NewBase starts a fresh Base for an archive of the given format, already
// holding a process-unique archive ID per spec.md §4.4.
func NewBase(format member.ArchiveFormat) *Base {
	return &Base{
		format:    format,
		archiveID: member.NextArchiveID(),
		byName:    make(map[string]*member.ArchiveMember),
		byID:      make(map[member.ID]*member.ArchiveMember),
		state:     StateNew,
	}
}

// BindSelf records the concrete Reader that embeds this Base. Every
// per-format Open constructor calls it once, immediately after assembling
// the concrete reader value, so Base's Extract/ExtractAll can dispatch to
// that reader's own Open/IterMembersWithIO.
func (b *Base) BindSelf(self Reader) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.self = self
}

// Register assigns m a fresh ID scoped to this archive and adds it to the
// member index, in archive order. Per-format readers call this once per
// member discovered during a scan.
func (b *Base) Register(m *member.ArchiveMember) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m.ID = member.ID{ArchiveID: b.archiveID, MemberID: b.ids.Next()}
	b.members = append(b.members, m)
	b.byName[m.Filename] = m
	b.byID[m.ID] = m
}

// SetInfo stores the archive-wide metadata record a per-format reader
// computed during its initial scan.
func (b *Base) SetInfo(info *member.ArchiveInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.info = info
}

// GetArchiveInfo returns the stored archive-wide metadata, or
// ErrNotSupported if the adapter never set one.
func (b *Base) GetArchiveInfo() (*member.ArchiveInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.info == nil {
		return nil, errs.New(errs.ErrNotSupported, "archive info unavailable", nil)
	}
	return b.info, nil
}

// GetMembers returns every registered member in archive order.
func (b *Base) GetMembers() ([]*member.ArchiveMember, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*member.ArchiveMember, len(b.members))
	copy(out, b.members)
	return out, nil
}

// GetMember looks a member up by exact filename.
func (b *Base) GetMember(name string) (*member.ArchiveMember, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.byName[name]
	if !ok {
		return nil, errs.New(errs.ErrMemberNotFound, name, nil)
	}
	return m, nil
}

// GetMemberByID looks a member up by its process-unique (ArchiveID,
// MemberID) pair, the id half of spec.md §4.5's "O(1) by id, O(1) by name"
// get_member contract.
func (b *Base) GetMemberByID(id member.ID) (*member.ArchiveMember, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.byID[id]
	if !ok {
		return nil, errs.New(errs.ErrMemberNotFound, fmt.Sprintf("id %+v", id), nil)
	}
	return m, nil
}

// Extract writes a single member under dest, applying filter and overwrite,
// using the bound self.Open for content, per spec.md §4.5's
// `extract`/`extractall` row and grounded on nabbar/golib/archive's own
// external, List/Walk-driven extraction function (that package's Reader
// interface carries no Extract method either; it is driven externally over
// the same contract this Base already exposes).
func (b *Base) Extract(m *member.ArchiveMember, dest string, filter Filter, overwrite OverwriteMode) error {
	b.mu.Lock()
	self := b.self
	b.mu.Unlock()
	if self == nil {
		return errs.New(errs.ErrNotSupported, "reader not bound for extraction", nil)
	}
	return extractOne(self, m, dest, filter, overwrite)
}

// ExtractAll writes every member under dest, draining any hardlinks
// deferred because their target hadn't been extracted yet when first seen.
func (b *Base) ExtractAll(dest string, filter Filter, overwrite OverwriteMode) error {
	b.mu.Lock()
	self := b.self
	b.mu.Unlock()
	if self == nil {
		return errs.New(errs.ErrNotSupported, "reader not bound for extraction", nil)
	}
	return extractAll(self, dest, filter, overwrite)
}

// ResolveLink follows m's LinkTarget through the name index. It is the
// default implementation, and no random-access reader under formats/
// overrides it, so link targets get no format-specific normalization.
func (b *Base) ResolveLink(m *member.ArchiveMember) (*member.ArchiveMember, error) {
	if m.Type != member.TypeSymlink && m.Type != member.TypeHardlink {
		return m, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.byName[m.LinkTarget]
	if !ok {
		return nil, errs.New(errs.ErrLinkTargetNotFound, m.LinkTarget, nil)
	}
	return t, nil
}

// State reports the current lifecycle state.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetState transitions the lifecycle state. Callers are responsible for
// only requesting valid transitions; Base does not itself enforce the
// full state graph beyond refusing any operation once CLOSED (see
// CheckOpen).
func (b *Base) SetState(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

// CheckOpen returns ErrClosed once the reader has been closed, the one
// transition every operation in Reader must refuse.
func (b *Base) CheckOpen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return errs.New(errs.ErrClosed, "", nil)
	}
	return nil
}

// Close marks the reader CLOSED. Idempotent per spec.md §5.
func (b *Base) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	return nil
}
