package format

import (
	"bytes"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nabbar/archivey/member"
)

// Logger is the minimal ambient logging hook archivey's Config wires in;
// nil by default (see SPEC_FULL.md §9.1 — detection warnings are best
// effort and never required).
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// compoundExtensions lists multi-segment suffixes that must be checked
// before their simple counterparts (spec §4.2 step 3).
var compoundExtensions = []struct {
	suffix string
	format member.ArchiveFormat
}{
	{".tar.gz", member.FormatTarGz},
	{".tgz", member.FormatTarGz},
	{".tar.bz2", member.FormatTarBz2},
	{".tbz2", member.FormatTarBz2},
	{".tbz", member.FormatTarBz2},
	{".tar.xz", member.FormatTarXz},
	{".txz", member.FormatTarXz},
	{".tar.zst", member.FormatTarZstd},
	{".tzst", member.FormatTarZstd},
	{".tar.lz4", member.FormatTarLz4},
	{".tlz4", member.FormatTarLz4},
}

var simpleExtensions = map[string]member.ArchiveFormat{
	".zip": member.FormatZip,
	".rar": member.FormatRar,
	".7z":  member.FormatSevenZip,
	".tar": member.FormatTar,
	".gz":  member.FormatGzip,
	".bz2": member.FormatBzip2,
	".xz":  member.FormatXz,
	".zst": member.FormatZstd,
	".lz4": member.FormatLz4,
	".br":  member.FormatBrotli,
	".z":   member.FormatCompressZ,
	".iso": member.FormatIso,
	".a":   member.FormatAr,
	".ar":  member.FormatAr,
	".deb": member.FormatAr,
}

// ReaderAtSeeker is the minimal capability a seekable source needs for
// signature probing without disturbing its read position.
type ReaderAtSeeker interface {
	io.Reader
	io.Seeker
}

// Detect implements spec §4.2: directory short-circuit, signature probe,
// extension probe, TAR-layering upgrade, and signature-wins-on-conflict
// with a logged warning. It never advances r's position (testable property
// #7) — it always seeks back to the position it started from.
func Detect(r ReaderAtSeeker, name string, isDir bool, log Logger) (member.ArchiveFormat, error) {
	if log == nil {
		log = nopLogger{}
	}
	if isDir {
		return member.FormatFolder, nil
	}

	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return member.FormatUnknown, err
	}
	defer r.Seek(start, io.SeekStart) //nolint:errcheck

	bySig, sigIsStream := detectBySignature(r, log)
	byExt := detectByExtension(name)

	switch {
	case bySig == member.FormatUnknown && byExt == member.FormatUnknown:
		return member.FormatUnknown, nil
	case bySig == member.FormatUnknown:
		return byExt, nil
	case byExt == member.FormatUnknown:
		return applyTarLayering(bySig, sigIsStream, byExt), nil
	case bySig == byExt:
		return bySig, nil
	default:
		upgraded := applyTarLayering(bySig, sigIsStream, byExt)
		if upgraded != byExt {
			log.Warnf("archivey: signature detected %q but filename %q suggests %q; using signature", upgraded, name, byExt)
		}
		return upgraded, nil
	}
}

// applyTarLayering implements spec §4.2 step 4: a bare-compressor
// signature is upgraded to the matching TAR_* variant unless the
// already-compound-aware extension match (byExt, from detectByExtension)
// names that exact bare format — i.e. the filename itself says "this is
// just a .gz", not "this is a .tar.gz". Re-deriving the extension from
// name here with the simple-only table would see "backup.tar.gz" as
// ".gz" and wrongly block every ordinary compound-named archive from
// ever being upgraded.
func applyTarLayering(f member.ArchiveFormat, isStreamSignature bool, byExt member.ArchiveFormat) member.ArchiveFormat {
	if !isStreamSignature {
		return f
	}
	if byExt == f {
		return f
	}
	sf := f.StreamFormatOf()
	if tv := member.TarVariantOf(sf); tv != member.FormatUnknown {
		return tv
	}
	return f
}

// detectBySignature probes every registered archive and stream signature,
// picking the lowest ArchiveFormat value when several match, then falls
// back to magic-less extra detectors
// (Brotli) last, per spec §4.1/§4.2. It reports whether the winning match
// came from the stream table (needed to decide TAR layering).
func detectBySignature(r ReaderAtSeeker, log Logger) (member.ArchiveFormat, bool) {
	mu.RLock()
	defer mu.RUnlock()

	type cand struct {
		archiveFmt member.ArchiveFormat
		isStream   bool
	}
	var plain []cand

	for f, e := range archives {
		if matchAny(r, e.signatures) {
			plain = append(plain, cand{archiveFmt: f})
		}
	}
	for f, e := range streams {
		if matchAny(r, e.signatures) {
			plain = append(plain, cand{archiveFmt: streamToArchiveFormat(f), isStream: true})
		}
	}
	if len(plain) > 0 {
		// Deterministic choice when multiple signatures happen to match
		// (shouldn't occur with well-formed registrations, but keeps
		// Detect idempotent rather than map-iteration-order dependent).
		sort.Slice(plain, func(i, j int) bool { return plain[i].archiveFmt < plain[j].archiveFmt })
		return plain[0].archiveFmt, plain[0].isStream
	}

	for f, e := range streams {
		if e.extra == nil {
			continue
		}
		if e.extra(r) {
			return streamToArchiveFormat(f), true
		}
	}

	return member.FormatUnknown, false
}

func streamToArchiveFormat(s member.StreamFormat) member.ArchiveFormat {
	switch s {
	case member.StreamGzip:
		return member.FormatGzip
	case member.StreamBzip2:
		return member.FormatBzip2
	case member.StreamXz:
		return member.FormatXz
	case member.StreamZstd:
		return member.FormatZstd
	case member.StreamLz4:
		return member.FormatLz4
	case member.StreamBrotli:
		return member.FormatBrotli
	case member.StreamUnixCompress:
		return member.FormatCompressZ
	default:
		return member.FormatUnknown
	}
}

func matchAny(r ReaderAtSeeker, sigs []Signature) bool {
	for _, s := range sigs {
		if matchOne(r, s) {
			return true
		}
	}
	return false
}

func matchOne(r ReaderAtSeeker, s Signature) bool {
	buf := make([]byte, len(s.Bytes))
	if _, err := r.Seek(s.Offset, io.SeekStart); err != nil {
		return false
	}
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return bytes.Equal(buf[:n], s.Bytes)
}

func detectByExtension(name string) member.ArchiveFormat {
	lower := strings.ToLower(name)
	for _, c := range compoundExtensions {
		if strings.HasSuffix(lower, c.suffix) {
			return c.format
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := simpleExtensions[ext]; ok {
		return f
	}
	return member.FormatUnknown
}

// IsDirEntry is a small helper so callers with an fs.FileInfo (from
// os.Stat) don't need to import io/fs themselves just for this check.
func IsDirEntry(info fs.FileInfo) bool {
	return info != nil && info.IsDir()
}
