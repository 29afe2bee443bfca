package archivereader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/member"
)

func mustModTime(t time.Time) *time.Time { return &t }

func TestExtraction_WriteFile(t *testing.T) {
	dir := t.TempDir()
	e := newExtraction(dir, FullyTrusted, Overwrite)

	m := &member.ArchiveMember{
		Filename: "a/b/hello.txt",
		Type:     member.TypeFile,
		Mode:     0o644,
		ModTime:  mustModTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, e.extractOne(m, strings.NewReader("hello")))
	require.NoError(t, e.drainPendingLinks())

	got, err := os.ReadFile(filepath.Join(dir, "a/b/hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func TestExtraction_OverwriteModes(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	t.Run("skip leaves existing content", func(t *testing.T) {
		e := newExtraction(dir, FullyTrusted, Skip)
		m := &member.ArchiveMember{Filename: "x.txt", Type: member.TypeFile}
		require.NoError(t, e.extractOne(m, strings.NewReader("new")))
		got, _ := os.ReadFile(target)
		require.Equal(t, "old", string(got))
	})

	t.Run("error mode aborts", func(t *testing.T) {
		e := newExtraction(dir, FullyTrusted, Error)
		m := &member.ArchiveMember{Filename: "x.txt", Type: member.TypeFile}
		err := e.extractOne(m, strings.NewReader("new"))
		require.Error(t, err)
		require.Equal(t, errs.ErrFileExists, errs.Code(err))
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		e := newExtraction(dir, FullyTrusted, Overwrite)
		m := &member.ArchiveMember{Filename: "x.txt", Type: member.TypeFile}
		require.NoError(t, e.extractOne(m, strings.NewReader("new")))
		got, _ := os.ReadFile(target)
		require.Equal(t, "new", string(got))
	})
}

func TestExtraction_DeferredHardlink(t *testing.T) {
	dir := t.TempDir()
	e := newExtraction(dir, FullyTrusted, Overwrite)

	link := &member.ArchiveMember{Filename: "link.txt", Type: member.TypeHardlink, LinkTarget: "real.txt"}
	real := &member.ArchiveMember{Filename: "real.txt", Type: member.TypeFile}

	require.NoError(t, e.extractOne(link, nil))
	require.Len(t, e.pending, 1)
	require.NoError(t, e.extractOne(real, strings.NewReader("content")))
	require.NoError(t, e.drainPendingLinks())

	got, err := os.ReadFile(filepath.Join(dir, "link.txt"))
	require.NoError(t, err)
	require.Equal(t, "content", string(got))
}

func TestExtraction_Symlink(t *testing.T) {
	dir := t.TempDir()
	e := newExtraction(dir, FullyTrusted, Overwrite)

	m := &member.ArchiveMember{Filename: "link", Type: member.TypeSymlink, LinkTarget: "target"}
	require.NoError(t, e.extractOne(m, nil))
	require.NoError(t, e.drainPendingLinks())

	got, err := os.Readlink(filepath.Join(dir, "link"))
	require.NoError(t, err)
	require.Equal(t, "target", got)
}

// TestExtraction_DataFilterRejectsEscapingSymlink replaces the old
// "drops links" behavior: filters.Data no longer excludes symlinks by
// member type, but it still must reject one whose target escapes the
// destination root, per spec.md §4.7/§8's "../x at archive root" case.
func TestExtraction_DataFilterRejectsEscapingSymlink(t *testing.T) {
	dir := t.TempDir()
	e := newExtraction(dir, Data, Overwrite)

	m := &member.ArchiveMember{Filename: "link", Type: member.TypeSymlink, LinkTarget: "/etc/passwd"}
	err := e.extractOne(m, nil)
	require.Error(t, err)

	_, statErr := os.Lstat(filepath.Join(dir, "link"))
	require.True(t, os.IsNotExist(statErr))
}

// TestExtraction_DataFilterKeepsContainedSymlink confirms Data no longer
// drops symlinks outright: a legitimate, contained relative target is
// preserved.
func TestExtraction_DataFilterKeepsContainedSymlink(t *testing.T) {
	dir := t.TempDir()
	e := newExtraction(dir, Data, Overwrite)

	m := &member.ArchiveMember{Filename: "a/link", Type: member.TypeSymlink, LinkTarget: "../sibling/file"}
	require.NoError(t, e.extractOne(m, nil))
	require.NoError(t, e.drainPendingLinks())

	got, err := os.Readlink(filepath.Join(dir, "a/link"))
	require.NoError(t, err)
	require.Equal(t, "../sibling/file", got)
}
