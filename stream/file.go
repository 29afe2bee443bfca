package stream

import "io"

// fileSource is the minimal capability a natively-seekable raw source
// (typically *os.File) provides directly, without any decompression —
// zip/tar-over-an-already-uncompressed-file and the FOLDER pseudo-archive
// read their members straight off of it.
type fileSource interface {
	io.Reader
	io.Seeker
	io.Closer
}

// fileStream adapts a fileSource to the Stream contract when no
// decompression is involved: Seek/Read pass straight through, and Size is
// discovered once via a SeekEnd/SeekStart round trip.
type fileStream struct {
	f      fileSource
	size   int64
	sizeOK bool
}

// NewFileStream wraps a natively seekable, uncompressed source (typically
// an opened archive file) as a Stream. This is what archivey.Open builds
// around the caller's os.File/io.ReadSeeker before handing it to
// format.Detect and a format Factory.
func NewFileStream(f fileSource) Stream {
	return &fileStream{f: f}
}

func (s *fileStream) Read(p []byte) (int, error) { return s.f.Read(p) }

func (s *fileStream) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *fileStream) Seekable() bool { return true }

func (s *fileStream) Size() (int64, bool) {
	if s.sizeOK {
		return s.size, true
	}
	cur, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	end, err := s.f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	_, _ = s.f.Seek(cur, io.SeekStart)
	s.size, s.sizeOK = end, true
	return s.size, true
}

func (s *fileStream) Close() error { return s.f.Close() }
