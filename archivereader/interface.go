// Package archivereader is the Reader Contract & Base (C6): a single
// interface every per-format adapter in formats/ satisfies, plus a base
// struct providing member registration, name lookup and the
// NEW→OPEN→(ITERATING↔IDLE)→CLOSED state machine shared by all of them.
//
// The Reader contract's shape (Close/List-as-GetMembers/Info-as-GetMember/
// Get-as-Open/Walk-as-IterMembersWithIO) is grounded on
// nabbar/golib/archive/archive/types.Reader, generalized from that
// package's ZIP/TAR-only pair to every container archivey supports.
package archivereader

import (
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

// MemberFunc is called once per member during IterMembersWithIO. io is nil
// for directories and link members that carry no content. Returning a
// non-nil error stops iteration and is returned by IterMembersWithIO.
type MemberFunc func(m *member.ArchiveMember, io stream.Stream) error

// Reader is the contract every per-format adapter under formats/
// implements, per spec.md §4.5.
type Reader interface {
	// GetArchiveInfo returns archive-wide metadata.
	GetArchiveInfo() (*member.ArchiveInfo, error)

	// GetMembers returns every member in archive order. Streaming-only
	// readers always return ErrNotSupported, even after a full scan.
	GetMembers() ([]*member.ArchiveMember, error)

	// GetMember looks a member up by exact filename.
	GetMember(name string) (*member.ArchiveMember, error)

	// GetMemberByID looks a member up by its process-unique id, the other
	// half of spec.md §4.5's "O(1) by id, O(1) by name" get_member contract.
	GetMemberByID(id member.ID) (*member.ArchiveMember, error)

	// Open returns a Stream over m's content. Calling Open a second time
	// on the same member is only guaranteed to succeed when the reader is
	// random-access (Seekable source); streaming-only readers invalidate
	// the previous member's stream on advance (spec.md §5).
	Open(m *member.ArchiveMember) (stream.Stream, error)

	// IterMembersWithIO walks every member in archive order, opening a
	// Stream for each non-directory, non-link member before invoking fn.
	IterMembersWithIO(fn MemberFunc) error

	// ResolveLink follows a symlink or hardlink member to the member it
	// targets, or returns ErrLinkTargetNotFound.
	ResolveLink(m *member.ArchiveMember) (*member.ArchiveMember, error)

	// Close releases all resources. Idempotent.
	Close() error

	// Extract writes a single member under dest, applying filter (nil
	// defaults to Data) and the given overwrite policy.
	Extract(m *member.ArchiveMember, dest string, filter Filter, overwrite OverwriteMode) error

	// ExtractAll writes every member under dest, applying filter (nil
	// defaults to Data) and the given overwrite policy.
	ExtractAll(dest string, filter Filter, overwrite OverwriteMode) error
}
