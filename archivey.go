package archivey

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/format"
	"github.com/nabbar/archivey/member"
	"github.com/nabbar/archivey/stream"
)

// Open detects source's archive/compression format and returns a Reader
// over it, per spec.md §6's single entry point. source is one of:
//   - a string filesystem path (a directory resolves to the FOLDER
//     pseudo-archive; a file is opened and detected);
//   - an io.Reader, optionally also satisfying io.ReaderAt+io.Seeker for
//     random-access formats (ZIP, AR, ISO-9660). A plain sequential
//     io.Reader only supports the sequential formats (TAR, the bare
//     single-file compressors, and TAR layered over one of them).
func Open(source any, opts ...Option) (archivereader.Reader, error) {
	cfg := NewConfig(opts...)

	switch v := source.(type) {
	case string:
		return openPath(v, cfg)
	case io.Reader:
		return openReader(v, "", cfg)
	default:
		return nil, errs.New(errs.ErrNotSupported, "unsupported source type for Open", nil)
	}
}

func openPath(path string, cfg Config) (archivereader.Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errs.New(errs.ErrIO, "stat "+path, err)
	}
	if info.IsDir() {
		return dispatch(member.FormatFolder, archivereader.Source{
			Path: path,
			Name: filepath.Base(path),
		}, nil, cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.ErrIO, "open "+path, err)
	}
	return openReader(f, path, cfg)
}

// randomAccess is what Open needs from r to treat it as a random-access
// source (ZIP's central directory, AR's table, ISO-9660's extents).
type randomAccess interface {
	io.ReaderAt
	io.ReadSeeker
}

func openReader(r io.Reader, name string, cfg Config) (archivereader.Reader, error) {
	closer, _ := r.(io.Closer)

	if ra, ok := r.(randomAccess); ok {
		fs := stream.NewFileStream(fileSourceAdapter{ra, closer})
		size, _ := fs.Size()

		f, err := format.Detect(fs, name, false, cfg.detectLogger())
		if err != nil {
			return nil, err
		}

		// fs is genuinely seekable: used both as the member source for
		// uncompressed formats and, unchanged, as the raw input a
		// compressor opener may rewind for random access.
		return dispatch(f, archivereader.Source{
			ReaderAt: ra,
			Size:     size,
			Stream:   fs,
			Closer:   closer,
			Name:     name,
		}, fs, cfg)
	}

	// Sequential-only source: buffer a small prefix so Detect can probe
	// signatures (every signature archivey registers lives within the
	// first 64KiB — TAR's "ustar" mark at offset 257 is the deepest one
	// that applies to a non-seekable source; ISO-9660's PVD at 32KiB only
	// ever arrives over a random-access source since formats/iso requires
	// Seekable()).
	peek, err := newPeekSeeker(r, 64*1024)
	if err != nil {
		return nil, errs.New(errs.ErrIO, "reading source header", err)
	}

	f, err := format.Detect(peek, name, false, cfg.detectLogger())
	if err != nil {
		return nil, err
	}

	// raw deliberately has no Seek method (unlike stream.Stream, which
	// always carries one even when it unconditionally errors) so a
	// compressor opener's seekableSource type assertion correctly takes
	// the sequential branch instead of trying to rewind a pipe.
	raw := bareReadCloser{r: peek.reader(), c: closer}
	ns := stream.NewNonSeekableIO(raw)

	return dispatch(f, archivereader.Source{
		Stream: ns,
		Closer: closer,
		Name:   name,
	}, raw, cfg)
}

// dispatch resolves f's registered Factory and, for a layered or
// bare-compressor format, first runs decodeInput through the matching
// stream.StreamOpener so the Factory always receives already-decompressed
// content, per spec.md §4.2's TAR-layering rule. decodeInput is nil when f
// needs no decoding (e.g. FOLDER).
func dispatch(f member.ArchiveFormat, src archivereader.Source, decodeInput io.Reader, cfg Config) (archivereader.Reader, error) {
	src.Format = f

	if f.IsTarCompressed() || f.IsSingleFileCompressed() {
		if f == member.FormatGzip && cfg.UseStoredMetadata() {
			src.Name = gzipStoredName(decodeInput, src.Name)
		}

		decoded, err := decodeStream(f.StreamFormatOf(), decodeInput)
		if err != nil {
			return nil, err
		}
		src.Stream = decoded
		src.ReaderAt = nil

		target := f
		if f.IsTarCompressed() {
			target = member.FormatTar
		}
		return buildReader(target, src, cfg)
	}

	return buildReader(f, src, cfg)
}

// gzipStoredName peeks decodeInput's gzip header for an embedded FNAME
// field, per spec.md §4.8's use_single_file_stored_metadata, rewinding
// decodeInput back to its start afterward so decodeStream still sees the
// whole member. Only applies when decodeInput can seek (the random-access
// source path); a non-seekable source falls back to fallback unread and
// untouched.
func gzipStoredName(decodeInput io.Reader, fallback string) string {
	seeker, ok := decodeInput.(io.Seeker)
	if !ok {
		return fallback
	}
	name, hasName, ok := stream.GzipMetadata(decodeInput)
	_, _ = seeker.Seek(0, io.SeekStart)
	if ok && hasName {
		return name
	}
	return fallback
}

func decodeStream(sf member.StreamFormat, raw io.Reader) (stream.Stream, error) {
	open, ok := format.StreamOpenerFor(sf)
	if !ok {
		return nil, errs.New(errs.ErrNotSupported, "no stream opener registered for "+sf.String(), nil)
	}
	rc, err := open(raw)
	if err != nil {
		return nil, err
	}
	if s, ok := rc.(stream.Stream); ok {
		return s, nil
	}
	return stream.NewNonSeekableIO(rc), nil
}

func buildReader(f member.ArchiveFormat, src archivereader.Source, cfg Config) (archivereader.Reader, error) {
	raw, ok := format.ReaderFactoryFor(f)
	if !ok {
		return nil, errs.New(errs.ErrNotSupported, f.String()+" has no registered reader", nil)
	}
	factory, ok := raw.(archivereader.Factory)
	if !ok {
		return nil, errs.New(errs.ErrNotSupported, f.String()+" factory has the wrong signature", nil)
	}
	return factory(src, archivereader.Options{
		Password:          cfg.Password(),
		UseRarStream:      cfg.UseRarStream(),
		UseLibarchive:     cfg.UseLibarchive(),
		TarCheckIntegrity: cfg.TarCheckIntegrity(),
	})
}

type fileSourceAdapter struct {
	randomAccess
	closer io.Closer
}

func (a fileSourceAdapter) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// bareReadCloser deliberately exposes only Read and Close — no Seek — so
// it is never mistaken for a rewindable source by a compressor opener.
type bareReadCloser struct {
	r io.Reader
	c io.Closer
}

func (b bareReadCloser) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b bareReadCloser) Close() error {
	if b.c != nil {
		return b.c.Close()
	}
	return nil
}

// peekSeeker buffers up to limit bytes from r so Detect can Seek within
// that prefix before any byte is handed to the actual consumer.
type peekSeeker struct {
	buf []byte
	pos int
	r   io.Reader
}

func newPeekSeeker(r io.Reader, limit int) (*peekSeeker, error) {
	buf := make([]byte, limit)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return &peekSeeker{buf: buf[:n], r: r}, nil
}

func (p *peekSeeker) Read(b []byte) (int, error) {
	if p.pos < len(p.buf) {
		n := copy(b, p.buf[p.pos:])
		p.pos += n
		return n, nil
	}
	return p.r.Read(b)
}

func (p *peekSeeker) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(p.pos) + offset
	default:
		return 0, errs.New(errs.ErrNotSupported, "peekSeeker only supports SeekStart/SeekCurrent", nil)
	}
	if target < 0 || target > int64(len(p.buf)) {
		return 0, errs.New(errs.ErrIO, "seek beyond buffered prefix", nil)
	}
	p.pos = int(target)
	return target, nil
}

// reader returns an io.Reader replaying the buffered prefix (from the
// current position) followed by the rest of the original source.
func (p *peekSeeker) reader() io.Reader {
	return io.MultiReader(bytes.NewReader(p.buf[p.pos:]), p.r)
}
