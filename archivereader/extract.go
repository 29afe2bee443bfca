package archivereader

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

// OverwriteMode controls what happens when an extraction target already
// exists, per spec.md §4.7.
type OverwriteMode uint8

const (
	// Overwrite replaces an existing file or directory entry.
	Overwrite OverwriteMode = iota
	// Skip leaves an existing target untouched and moves on.
	Skip
	// Error aborts extraction with ErrFileExists.
	Error
)

// extraction holds the write-side state (overwrite policy, deferred
// hardlinks) shared across one Extract/ExtractAll call, grounded on
// nabbar/golib/archive/extract.go's writeFile/writeSymLink/createPath
// trio, generalized from that file's single "always overwrite" behavior
// to the three-mode OverwriteMode policy and from immediate to deferred
// hardlink resolution.
type extraction struct {
	root      string
	filter    Filter
	overwrite OverwriteMode

	extracted map[string]string // member filename -> extracted path, for hardlinks
	pending   []pendingLink
}

type pendingLink struct {
	dest   string
	target string
}

func newExtraction(root string, filter Filter, overwrite OverwriteMode) *extraction {
	if filter == nil {
		filter = Data
	}
	return &extraction{root: root, filter: filter, overwrite: overwrite, extracted: map[string]string{}}
}

// extractAll iterates every member of rd and writes each one under root,
// draining any hardlinks deferred because their target hadn't been
// extracted yet when first seen.
func extractAll(rd Reader, root string, filter Filter, overwrite OverwriteMode) error {
	e := newExtraction(root, filter, overwrite)
	if err := rd.IterMembersWithIO(func(m *member.ArchiveMember, s stream.Stream) error {
		return e.extractOne(m, s)
	}); err != nil {
		return err
	}
	return e.drainPendingLinks()
}

// extractOne opens m via rd.Open and writes it under root.
func extractOne(rd Reader, m *member.ArchiveMember, root string, filter Filter, overwrite OverwriteMode) error {
	e := newExtraction(root, filter, overwrite)
	var content stream.Stream
	if m.Type != member.TypeDir && m.Type != member.TypeSymlink && m.Type != member.TypeHardlink {
		s, err := rd.Open(m)
		if err != nil {
			return err
		}
		defer s.Close()
		content = s
	}
	if err := e.extractOne(m, content); err != nil {
		return err
	}
	return e.drainPendingLinks()
}

func (e *extraction) extractOne(m *member.ArchiveMember, content io.Reader) error {
	relPath := m.Filename
	filtered, err := e.filter(m, e.root)
	if err != nil {
		return err
	}
	if filtered == nil {
		return nil // filter chose to skip this member
	}
	m = filtered

	dest := filepath.Join(e.root, m.Filename)

	switch m.Type {
	case member.TypeDir:
		return e.writeDir(dest, m)
	case member.TypeSymlink:
		return e.writeSymlink(dest, m)
	case member.TypeHardlink:
		return e.writeHardlink(relPath, dest, m)
	default:
		return e.writeFile(dest, m, content)
	}
}

func (e *extraction) checkExisting(dest string) (skip bool, err error) {
	if _, statErr := os.Lstat(dest); statErr == nil {
		switch e.overwrite {
		case Skip:
			return true, nil
		case Error:
			return false, errs.New(errs.ErrFileExists, dest, nil)
		default:
			_ = os.RemoveAll(dest)
		}
	}
	return false, nil
}

func (e *extraction) writeDir(dest string, m *member.ArchiveMember) error {
	mode := os.FileMode(m.Mode)
	if mode == 0 {
		mode = 0o750
	}
	if err := os.MkdirAll(dest, mode); err != nil {
		return errs.New(errs.ErrIO, "creating directory "+dest, err)
	}
	e.extracted[m.Filename] = dest
	return nil
}

func (e *extraction) writeFile(dest string, m *member.ArchiveMember, content io.Reader) error {
	skip, err := e.checkExisting(dest)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return errs.New(errs.ErrIO, "creating parent directory for "+dest, err)
	}

	mode := os.FileMode(m.Mode)
	if mode == 0 {
		mode = 0o640
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errs.New(errs.ErrIO, "creating "+dest, err)
	}
	defer f.Close()

	if content != nil {
		if _, err := io.Copy(f, content); err != nil {
			return errs.New(errs.ErrIO, "writing "+dest, err)
		}
	}
	e.extracted[m.Filename] = dest
	return applyMetadata(dest, m)
}

func (e *extraction) writeSymlink(dest string, m *member.ArchiveMember) error {
	skip, err := e.checkExisting(dest)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return errs.New(errs.ErrIO, "creating parent directory for "+dest, err)
	}
	if err := os.Symlink(m.LinkTarget, dest); err != nil {
		return errs.New(errs.ErrIO, "creating symlink "+dest, err)
	}
	e.extracted[m.Filename] = dest
	return nil
}

// writeHardlink defers resolution if the target hasn't been extracted
// yet (common when a TAR's hardlink entry precedes its target), per
// spec.md §4.7's deferred-hardlink rule.
func (e *extraction) writeHardlink(relPath, dest string, m *member.ArchiveMember) error {
	if target, ok := e.extracted[m.LinkTarget]; ok {
		return e.linkNow(dest, target)
	}
	e.pending = append(e.pending, pendingLink{dest: dest, target: m.LinkTarget})
	_ = relPath
	return nil
}

func (e *extraction) linkNow(dest, target string) error {
	skip, err := e.checkExisting(dest)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return errs.New(errs.ErrIO, "creating parent directory for "+dest, err)
	}
	if err := os.Link(target, dest); err != nil {
		return errs.New(errs.ErrIO, "creating hardlink "+dest, err)
	}
	return nil
}

// drainPendingLinks resolves every hardlink deferred during the main
// pass, now that every regular member has been written.
func (e *extraction) drainPendingLinks() error {
	for _, p := range e.pending {
		target, ok := e.extracted[p.target]
		if !ok {
			return errs.New(errs.ErrLinkTargetNotFound, p.target, nil)
		}
		if err := e.linkNow(p.dest, target); err != nil {
			return err
		}
	}
	e.pending = nil
	return nil
}

// applyMetadata sets mtime after content is written, and best-effort
// ownership when the caller runs with the privilege to do so (chown
// failures are silently ignored, matching the "best-effort chown" note in
// spec.md §4.7).
func applyMetadata(dest string, m *member.ArchiveMember) error {
	if m.ModTime != nil {
		mt := *m.ModTime
		if mt.IsZero() {
			mt = time.Now()
		}
		_ = os.Chtimes(dest, mt, mt)
	}
	if m.UID != 0 || m.GID != 0 {
		_ = os.Chown(dest, m.UID, m.GID)
	}
	return nil
}
