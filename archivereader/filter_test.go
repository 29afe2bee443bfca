package archivereader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/member"
)

func TestFullyTrusted_PassesThroughUnchanged(t *testing.T) {
	m := &member.ArchiveMember{Filename: "../escape", Mode: 0o7777}
	out, err := FullyTrusted(m, "/dest")
	require.NoError(t, err)
	require.Same(t, m, out)
}

func TestTar_MasksModeButKeepsBits(t *testing.T) {
	m := &member.ArchiveMember{Filename: "a/b.txt", Type: member.TypeFile, Mode: 0o100755}
	out, err := Tar(m, "/dest")
	require.NoError(t, err)
	require.Equal(t, uint32(0o755), out.Mode)
}

func TestData_ClearsExecBitAndForcesOwnerReadWrite(t *testing.T) {
	m := &member.ArchiveMember{Filename: "a/b.sh", Type: member.TypeFile, Mode: 0o755}
	out, err := Data(m, "/dest")
	require.NoError(t, err)
	require.Equal(t, uint32(0o644), out.Mode)
}

func TestData_PreservesNonExecBitsBeyondOwnerReadWrite(t *testing.T) {
	m := &member.ArchiveMember{Filename: "a/b.txt", Type: member.TypeFile, Mode: 0o644}
	out, err := Data(m, "/dest")
	require.NoError(t, err)
	// exec bits cleared, 0o600 forced on, remaining group/other read bits
	// from the original mode survive the OR.
	require.Equal(t, uint32(0o644), out.Mode)
}

func TestData_DirectoryModeNotForcedExecClear(t *testing.T) {
	m := &member.ArchiveMember{Filename: "a/", Type: member.TypeDir, Mode: 0o755}
	out, err := Data(m, "/dest")
	require.NoError(t, err)
	require.Equal(t, uint32(0o755), out.Mode)
}

func TestData_DoesNotDropLinkMembers(t *testing.T) {
	m := &member.ArchiveMember{Filename: "a/link", Type: member.TypeSymlink, LinkTarget: "sibling"}
	out, err := Data(m, "/dest")
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, member.TypeSymlink, out.Type)
}

func TestFilter_RejectsAbsoluteFilename(t *testing.T) {
	m := &member.ArchiveMember{Filename: "/etc/passwd", Type: member.TypeFile}
	_, err := Data(m, "/dest")
	require.Error(t, err)
}

func TestFilter_RejectsTraversalFilename(t *testing.T) {
	m := &member.ArchiveMember{Filename: "../../etc/passwd", Type: member.TypeFile}
	_, err := Tar(m, "/dest")
	require.Error(t, err)
}

func TestFilter_RejectsEscapingSymlinkTargetAtArchiveRoot(t *testing.T) {
	// spec.md §8's boundary case: a symlink at the archive root whose
	// target is "../x" must be rejected even though it looks like an
	// ordinary relative path, because dirname("x") is the root itself.
	m := &member.ArchiveMember{Filename: "x", Type: member.TypeSymlink, LinkTarget: "../x"}
	_, err := Tar(m, "/dest")
	require.Error(t, err)
	require.Equal(t, errs.ErrIO, errs.Code(err))
}

func TestFilter_KeepsContainedRelativeSymlinkTarget(t *testing.T) {
	// a/b/link -> ../sibling/file is valid: dirname("a/b/link") is "a/b",
	// joined with "../sibling/file" gives "a/sibling/file", still under
	// the destination root. The stored target itself must not be
	// corrupted (i.e. not lexically stripped down to "sibling/file").
	m := &member.ArchiveMember{Filename: "a/b/link", Type: member.TypeSymlink, LinkTarget: "../sibling/file"}
	out, err := Tar(m, "/dest")
	require.NoError(t, err)
	require.Equal(t, "../sibling/file", out.LinkTarget)
}

func TestFilter_RejectsEscapingHardlinkTarget(t *testing.T) {
	m := &member.ArchiveMember{Filename: "link", Type: member.TypeHardlink, LinkTarget: "../../etc/passwd"}
	_, err := Data(m, "/dest")
	require.Error(t, err)
}

func TestFilter_KeepsContainedHardlinkTargetVerbatim(t *testing.T) {
	m := &member.ArchiveMember{Filename: "link", Type: member.TypeHardlink, LinkTarget: "real.txt"}
	out, err := Tar(m, "/dest")
	require.NoError(t, err)
	require.Equal(t, "real.txt", out.LinkTarget)
}
