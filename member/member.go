// Package member defines the data types shared by every archivey reader:
// the archive/stream format enumerations, the member value object, and the
// per-archive metadata record.
//
// The flavor of small, tag-free value structs here (as opposed to one large
// struct with format-specific pointers) follows nabbar/golib/archive/archive/model.go's
// File type: plain fields, helper methods, no inheritance.
package member

import "time"

// ArchiveFormat is the closed set of containers archivey recognizes.
type ArchiveFormat uint8

const (
	FormatUnknown ArchiveFormat = iota
	FormatZip
	FormatRar
	FormatSevenZip
	FormatTar
	FormatTarGz
	FormatTarBz2
	FormatTarXz
	FormatTarZstd
	FormatTarLz4
	FormatGzip
	FormatBzip2
	FormatXz
	FormatZstd
	FormatLz4
	FormatBrotli
	FormatCompressZ
	FormatIso
	FormatAr
	FormatFolder
)

func (f ArchiveFormat) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatRar:
		return "rar"
	case FormatSevenZip:
		return "7z"
	case FormatTar:
		return "tar"
	case FormatTarGz:
		return "tar.gz"
	case FormatTarBz2:
		return "tar.bz2"
	case FormatTarXz:
		return "tar.xz"
	case FormatTarZstd:
		return "tar.zst"
	case FormatTarLz4:
		return "tar.lz4"
	case FormatGzip:
		return "gzip"
	case FormatBzip2:
		return "bzip2"
	case FormatXz:
		return "xz"
	case FormatZstd:
		return "zstd"
	case FormatLz4:
		return "lz4"
	case FormatBrotli:
		return "brotli"
	case FormatCompressZ:
		return "compress-z"
	case FormatIso:
		return "iso"
	case FormatAr:
		return "ar"
	case FormatFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// IsSingleFileCompressed reports whether f is a bare compressor format that
// exposes exactly one synthetic member (spec §3's SingleFileCompressed set).
func (f ArchiveFormat) IsSingleFileCompressed() bool {
	switch f {
	case FormatGzip, FormatBzip2, FormatXz, FormatZstd, FormatLz4, FormatBrotli, FormatCompressZ:
		return true
	default:
		return false
	}
}

// IsTarCompressed reports whether f is a TAR layered over a compressor.
func (f ArchiveFormat) IsTarCompressed() bool {
	switch f {
	case FormatTarGz, FormatTarBz2, FormatTarXz, FormatTarZstd, FormatTarLz4:
		return true
	default:
		return false
	}
}

// StreamFormatOf returns the compressor counterpart of a TarCompressed or
// SingleFileCompressed archive format, completing the bijection spec §3
// requires between the two sets.
func (f ArchiveFormat) StreamFormatOf() StreamFormat {
	switch f {
	case FormatTarGz, FormatGzip:
		return StreamGzip
	case FormatTarBz2, FormatBzip2:
		return StreamBzip2
	case FormatTarXz, FormatXz:
		return StreamXz
	case FormatTarZstd, FormatZstd:
		return StreamZstd
	case FormatTarLz4, FormatLz4:
		return StreamLz4
	case FormatBrotli:
		return StreamBrotli
	case FormatCompressZ:
		return StreamUnixCompress
	default:
		return StreamUnknown
	}
}

// TarVariantOf returns the TAR_* archive format layered over a given
// compressor, the other half of the bijection.
func TarVariantOf(s StreamFormat) ArchiveFormat {
	switch s {
	case StreamGzip:
		return FormatTarGz
	case StreamBzip2:
		return FormatTarBz2
	case StreamXz:
		return FormatTarXz
	case StreamZstd:
		return FormatTarZstd
	case StreamLz4:
		return FormatTarLz4
	default:
		return FormatUnknown
	}
}

// StreamFormat is the compressor-only enumeration used by the stream layer.
type StreamFormat uint8

const (
	StreamUnknown StreamFormat = iota
	StreamGzip
	StreamBzip2
	StreamXz
	StreamZstd
	StreamLz4
	StreamBrotli
	StreamZlib
	StreamUnixCompress
)

func (s StreamFormat) String() string {
	switch s {
	case StreamGzip:
		return "gzip"
	case StreamBzip2:
		return "bzip2"
	case StreamXz:
		return "xz"
	case StreamZstd:
		return "zstd"
	case StreamLz4:
		return "lz4"
	case StreamBrotli:
		return "brotli"
	case StreamZlib:
		return "zlib"
	case StreamUnixCompress:
		return "compress-z"
	default:
		return "unknown"
	}
}

// MemberType classifies an ArchiveMember.
type MemberType uint8

const (
	TypeFile MemberType = iota
	TypeDir
	TypeSymlink
	TypeHardlink
	TypeOther
)

// ID is the process-unique pair identifying a member: (ArchiveID, MemberID).
type ID struct {
	ArchiveID int64
	MemberID  int64
}

// ArchiveMember is the value object spec §3 describes. Extraction filters
// never modify a registered member; they work on a copy made with Clone.
type ArchiveMember struct {
	ID ID

	Filename       string
	FileSize       *int64
	CompressSize   *int64
	ModTime        *time.Time
	Type           MemberType
	Mode           uint32
	UID, GID       int
	Uname, Gname   string
	CRC32          uint32
	Method         string
	Comment        string
	CreateSystem   string
	Encrypted      bool
	Extra          map[string]any
	LinkTarget     string

	// RawInfo is an opaque, back-end private handle (e.g. *tar.Header,
	// *zip.File) the owning reader uses to re-open this member. Only the
	// reader that produced it ever type-asserts it.
	RawInfo any
}

// IsDir reports whether m is a directory per spec §3 ("a directory's
// filename ends with /").
func (m *ArchiveMember) IsDir() bool {
	return m.Type == TypeDir
}

// Clone returns a shallow copy safe to mutate (used by extraction filters
// that rewrite Filename/LinkTarget without touching the registered member).
func (m *ArchiveMember) Clone() *ArchiveMember {
	c := *m
	return &c
}

// ArchiveInfo is per-archive metadata (spec §3).
type ArchiveInfo struct {
	Format   ArchiveFormat
	Version  string
	IsSolid  bool
	Comment  string
	Extra    map[string]any
}
