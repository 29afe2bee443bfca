package archivereader

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/safearchive/sanitizer"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/member"
)

// Filter inspects m together with destPath, the destination root it is
// being extracted under, and returns a possibly-modified member to extract,
// or a nil member (with a nil error) to skip it silently, or an error to
// abort the whole extraction.
//
// Name and link-target sanitization is grounded on
// _examples/original_source/src/archivey/api/filters.py's
// _sanitize_name/_sanitize_link_target/_get_filtered_member: normalize,
// then reject outright if the result still escapes the destination root.
// github.com/google/safearchive/sanitizer.SanitizePath only normalizes —
// its own contract guarantees a join is always safe but never errors on
// an escaping input — so it is used here purely for the final, accepted
// normalization, with containment rejection performed independently
// before that output is trusted.
type Filter func(m *member.ArchiveMember, destPath string) (*member.ArchiveMember, error)

// FullyTrusted performs no sanitization at all: every member is extracted
// exactly as the archive describes it, symlinks and hardlinks included
// with unmodified targets. Intended only for archives from a fully
// trusted source, per spec.md §4.7.
func FullyTrusted(m *member.ArchiveMember, _ string) (*member.ArchiveMember, error) {
	return m, nil
}

// Tar sanitizes filenames, link targets and permissions against path
// traversal but otherwise preserves symlinks/hardlinks, matching the
// conventional behavior of `tar -x` (filters.py's tar_filter: for_data=False,
// sanitize_names/sanitize_link_targets/sanitize_permissions all True).
func Tar(m *member.ArchiveMember, destPath string) (*member.ArchiveMember, error) {
	return filterMember(m, destPath, false)
}

// Data is the most restrictive built-in: names, link targets and
// permissions are sanitized the same way as Tar, and on top of that
// regular-file permissions have their executable bit cleared and 0o600
// ORed in — the policy spec.md §4.7 and filters.py's data_filter
// (for_data=True) describe for untrusted "just give me the bytes"
// extraction. Symlinks, hardlinks and other member types are NOT
// dropped — filters.py never excludes by member type, only by sanitized
// path/target legality.
func Data(m *member.ArchiveMember, destPath string) (*member.ArchiveMember, error) {
	return filterMember(m, destPath, true)
}

func filterMember(m *member.ArchiveMember, destPath string, forData bool) (*member.ArchiveMember, error) {
	c := m.Clone()

	name, err := sanitizeName(c.Filename, destPath)
	if err != nil {
		return nil, err
	}
	c.Filename = name

	if c.LinkTarget != "" {
		switch c.Type {
		case member.TypeSymlink:
			target, err := sanitizeSymlinkTarget(c.Filename, c.LinkTarget, destPath)
			if err != nil {
				return nil, err
			}
			c.LinkTarget = target
		case member.TypeHardlink:
			// Hardlink targets are checked for containment but, per
			// filters.py's _sanitize_link_target, returned verbatim —
			// they name another archive member by its own sanitized
			// path, not a filesystem-relative offset like a symlink.
			if err := requireContained(destPath, c.LinkTarget); err != nil {
				return nil, err
			}
		}
	}

	c.Mode &= 0o777
	if forData && c.Type == member.TypeFile {
		c.Mode &^= 0o111
		c.Mode |= 0o600
	}

	return c, nil
}

// sanitizeName normalizes name the way filters.py's _sanitize_name does
// (posix-clean, reject absolute paths, preserve a trailing slash for
// directories), then rejects it if the cleaned result still escapes
// destPath once joined.
func sanitizeName(name, destPath string) (string, error) {
	hadTrailingSlash := strings.HasSuffix(name, "/")
	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if strings.HasPrefix(cleaned, "/") {
		return "", errs.New(errs.ErrIO, "absolute member path rejected: "+name, nil)
	}
	if cleaned == "." {
		cleaned = ""
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errs.New(errs.ErrIO, "member path escapes extraction root: "+name, nil)
	}
	if hadTrailingSlash && cleaned != "" {
		cleaned += "/"
	}
	if err := requireContained(destPath, cleaned); err != nil {
		return "", err
	}
	// SanitizePath is still applied to the accepted value, for its
	// cross-platform separator normalization, now that escape has
	// already been independently rejected above rather than silently
	// stripped.
	return sanitizer.SanitizePath(cleaned), nil
}

// sanitizeSymlinkTarget normalizes target relative to dirname(filename)
// per filters.py's _sanitize_link_target, then rejects it if the joined
// path escapes destPath. The returned value is target itself, normalized
// but not joined — the symlink is still written relative to its own
// directory, only its legality is checked against the full join.
func sanitizeSymlinkTarget(filename, target, destPath string) (string, error) {
	normalized := path.Clean(strings.ReplaceAll(target, "\\", "/"))
	joined := path.Join(path.Dir(filename), normalized)
	if joined == ".." || strings.HasPrefix(joined, "../") || path.IsAbs(normalized) {
		return "", errs.New(errs.ErrIO, "symlink target escapes extraction root: "+target, nil)
	}
	if err := requireContained(destPath, joined); err != nil {
		return "", err
	}
	return normalized, nil
}

// requireContained rejects a name/target that still resolves outside
// root once joined, the belt-and-braces check
// nabbar/golib/archive/extract.go's cleanPath skips (it only strips one
// leading "../" rather than rejecting).
func requireContained(root, name string) error {
	joined := filepath.Join(root, name)
	rel, err := filepath.Rel(root, joined)
	if err != nil {
		return errs.New(errs.ErrIO, "path containment check failed", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errs.New(errs.ErrIO, "member path escapes extraction root: "+name, nil)
	}
	return nil
}
