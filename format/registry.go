// Package format implements the Format Registry (a declarative table of
// supported archive/stream formats, their magic signatures, extensions and
// handler factories) and the Format Detector built on top of it.
//
// The registry pattern — a package-level map populated from an init(),
// guarded for concurrent mutation — is grounded on the message-function
// registry of nabbar/golib/errors (RegisterIdFctMessage/idMsgFct), adapted
// here from "one message function per error code" to "one factory pair per
// format".
package format

import (
	"fmt"
	"io"
	"sync"

	"github.com/nabbar/archivey/errs"
	"github.com/nabbar/archivey/member"
)

// Signature is a magic byte sequence expected at a fixed offset.
type Signature struct {
	Bytes  []byte
	Offset int64
}

// StreamOpener opens a decompressed byte stream over r. It is implemented
// by the stream package; format only holds the function value to avoid an
// import cycle (stream imports format to register its openers).
type StreamOpener func(r io.Reader, opts ...any) (io.ReadCloser, error)

// ExtraDetector probes a stream for formats without a distinctive magic
// (Brotli). It must restore the stream position before returning, per
// spec §4.1.
type ExtraDetector func(r io.ReadSeeker) bool

// ReaderFactory builds a per-format archive reader. It is declared as `any`
// here and type-asserted by archivey.Open to the concrete archivereader.Factory,
// func(archivereader.Source, archivereader.Options) (archivereader.Reader, error),
// again to avoid format importing archivereader (which imports
// format for detection).
type ReaderFactory any

type streamEntry struct {
	format     member.StreamFormat
	signatures []Signature
	extensions []string
	open       StreamOpener
	extra      ExtraDetector
}

type archiveEntry struct {
	format     member.ArchiveFormat
	signatures []Signature
	extensions []string
	reader     ReaderFactory
}

var (
	mu        sync.RWMutex
	streams   = map[member.StreamFormat]*streamEntry{}
	archives  = map[member.ArchiveFormat]*archiveEntry{}
)

// RegisterStreamFormat adds or replaces a compressor entry. Called from
// stream's init() for every built-in codec.
func RegisterStreamFormat(f member.StreamFormat, sig []Signature, ext []string, open StreamOpener, extra ExtraDetector) {
	mu.Lock()
	defer mu.Unlock()
	streams[f] = &streamEntry{format: f, signatures: sig, extensions: ext, open: open, extra: extra}
}

// RegisterReader adds or replaces the factory for an archive format,
// per spec §6 ("register_reader(format, factory)").
func RegisterReader(f member.ArchiveFormat, sig []Signature, ext []string, factory ReaderFactory) {
	mu.Lock()
	defer mu.Unlock()
	archives[f] = &archiveEntry{format: f, signatures: sig, extensions: ext, reader: factory}
}

// UnregisterReader removes a previously registered archive format.
func UnregisterReader(f member.ArchiveFormat) {
	mu.Lock()
	defer mu.Unlock()
	delete(archives, f)
}

// ReaderFactoryFor looks up the factory registered for f.
func ReaderFactoryFor(f member.ArchiveFormat) (ReaderFactory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := archives[f]
	if !ok {
		return nil, false
	}
	return e.reader, true
}

// StreamOpenerFor looks up the open function registered for s.
func StreamOpenerFor(s member.StreamFormat) (StreamOpener, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := streams[s]
	if !ok {
		return nil, false
	}
	return e.open, true
}

// ErrNoReader builds the ErrNotSupported error for a format with no
// registered factory (e.g. one unregistered at runtime).
func ErrNoReader(f member.ArchiveFormat) error {
	return errs.New(errs.ErrNotSupported, fmt.Sprintf("no reader registered for format %q", f), nil)
}
