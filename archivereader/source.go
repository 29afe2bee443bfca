package archivereader

import (
	"io"

	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

// Source is what archivey.Open hands to a per-format Factory after
// detection: either random-access bytes (ReaderAt/Size, for zip-style
// central-directory formats) or a sequential Stream (for tar-style
// linear formats, already decompressed if the detector found a TAR_*
// layering), or a filesystem Path (for the FOLDER pseudo-archive).
type Source struct {
	ReaderAt io.ReaderAt
	Size     int64
	Stream   stream.Stream
	Closer   io.Closer
	Path     string

	// Format is the format Detect resolved before the Factory was looked
	// up; singlefile/ar and similar variable-shaped formats use it to
	// decide which compressor metadata to look for.
	Format member.ArchiveFormat

	// Name is the archive filename formats/singlefile derives the synthetic
	// member's name from (by trimming the compressor's extension). When
	// Config.UseStoredMetadata is set and the source is gzip, archivey.Open
	// overwrites this with the embedded FNAME field before the Factory
	// ever runs, per spec.md §4.8 use_single_file_stored_metadata.
	Name string
}

// Options carries the per-call configuration a Factory needs, mapped from
// the root package's Config (spec.md §4.8/§6).
type Options struct {
	Password      string
	UseRarStream  bool
	UseLibarchive bool

	// TarCheckIntegrity, when true (default), aborts a TAR scan on any
	// block header error; when false, a header/checksum error is treated
	// as end-of-useful-data and the members already parsed are kept
	// (spec.md §4.8 tar_check_integrity, §9 Open Question resolution:
	// compressor-layer errors always propagate regardless of this flag).
	TarCheckIntegrity bool
}

// Factory builds a Reader for one archive format out of a detected
// Source. format.RegisterReader stores these as `any` to avoid format
// importing archivereader; archivey.Open type-asserts them back.
type Factory func(src Source, opts Options) (Reader, error)
