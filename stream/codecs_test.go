package stream

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func gzipPayload(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zlibPayload(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func xzPayload(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdPayload(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func lz4Payload(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotliPayload(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func readAllClosing(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	return string(got)
}

func TestOpenGzip_Seekable(t *testing.T) {
	raw := &closableReader{Reader: bytes.NewReader(gzipPayload(t, "gzip payload"))}
	rc, err := openGzip(raw)
	require.NoError(t, err)
	require.Equal(t, "gzip payload", readAllClosing(t, rc))
}

func TestOpenGzip_Sequential(t *testing.T) {
	rc, err := openGzip(io.NopCloser(bytes.NewReader(gzipPayload(t, "seq gzip"))))
	require.NoError(t, err)
	require.Equal(t, "seq gzip", readAllClosing(t, rc))
}

func TestOpenGzip_TruncatedHeaderErrors(t *testing.T) {
	_, err := openGzip(io.NopCloser(bytes.NewReader([]byte{0x00, 0x00, 0x00})))
	require.Error(t, err)
}

func TestOpenBzip2_SeekableReturnsDecompressorStream(t *testing.T) {
	raw := &closableReader{Reader: bytes.NewReader([]byte("not a real bzip2 stream but long enough"))}
	rc, err := openBzip2(raw)
	require.NoError(t, err)
	_, isDecompressorStream := rc.(*DecompressorStream)
	require.True(t, isDecompressorStream)
	require.NoError(t, rc.Close())
}

func TestOpenBzip2_SequentialReturnsSequentialAdapter(t *testing.T) {
	rc, err := openBzip2(io.NopCloser(bytes.NewReader([]byte("not a real bzip2 stream either"))))
	require.NoError(t, err)
	_, isSequentialAdapter := rc.(*sequentialAdapter)
	require.True(t, isSequentialAdapter)
	require.NoError(t, rc.Close())
}

func TestBzip2Stdlib_RejectsGarbage(t *testing.T) {
	// compress/bzip2 exposes no writer, so this test only confirms the
	// reader used by openBzip2 rejects garbage rather than silently
	// succeeding, which is the property openBzip2 relies on.
	r := bzip2.NewReader(bytes.NewReader([]byte("BZhgarbage")))
	_, err := io.ReadAll(r)
	require.Error(t, err)
}

func TestOpenXz_Seekable(t *testing.T) {
	raw := &closableReader{Reader: bytes.NewReader(xzPayload(t, "xz payload"))}
	rc, err := openXz(raw)
	require.NoError(t, err)
	require.Equal(t, "xz payload", readAllClosing(t, rc))
}

func TestOpenXz_Sequential(t *testing.T) {
	rc, err := openXz(io.NopCloser(bytes.NewReader(xzPayload(t, "seq xz"))))
	require.NoError(t, err)
	require.Equal(t, "seq xz", readAllClosing(t, rc))
}

func TestOpenZstd_Seekable(t *testing.T) {
	raw := &closableReader{Reader: bytes.NewReader(zstdPayload(t, "zstd payload"))}
	rc, err := openZstd(raw)
	require.NoError(t, err)
	require.Equal(t, "zstd payload", readAllClosing(t, rc))
}

func TestOpenZstd_Sequential(t *testing.T) {
	rc, err := openZstd(io.NopCloser(bytes.NewReader(zstdPayload(t, "seq zstd"))))
	require.NoError(t, err)
	require.Equal(t, "seq zstd", readAllClosing(t, rc))
}

func TestZstdSeekStream_BackwardSeekReopensViaReset(t *testing.T) {
	raw := &closableReader{Reader: bytes.NewReader(zstdPayload(t, "0123456789"))}
	rc, err := openZstd(raw)
	require.NoError(t, err)
	zs := rc.(*zstdSeekStream)

	buf := make([]byte, 6)
	_, err = io.ReadFull(zs, buf)
	require.NoError(t, err)

	pos, err := zs.Seek(1, io.SeekStart)
	require.NoError(t, err)
	require.EqualValues(t, 1, pos)

	rest, err := io.ReadAll(zs)
	require.NoError(t, err)
	require.Equal(t, "123456789", string(rest))
}

func TestOpenLz4_Seekable(t *testing.T) {
	raw := &closableReader{Reader: bytes.NewReader(lz4Payload(t, "lz4 payload"))}
	rc, err := openLz4(raw)
	require.NoError(t, err)
	require.Equal(t, "lz4 payload", readAllClosing(t, rc))
}

func TestOpenLz4_Sequential(t *testing.T) {
	rc, err := openLz4(io.NopCloser(bytes.NewReader(lz4Payload(t, "seq lz4"))))
	require.NoError(t, err)
	require.Equal(t, "seq lz4", readAllClosing(t, rc))
}

func TestOpenBrotli_Seekable(t *testing.T) {
	raw := &closableReader{Reader: bytes.NewReader(brotliPayload(t, "brotli payload"))}
	rc, err := openBrotli(raw)
	require.NoError(t, err)
	require.Equal(t, "brotli payload", readAllClosing(t, rc))
}

func TestOpenBrotli_Sequential(t *testing.T) {
	rc, err := openBrotli(io.NopCloser(bytes.NewReader(brotliPayload(t, "seq brotli"))))
	require.NoError(t, err)
	require.Equal(t, "seq brotli", readAllClosing(t, rc))
}

func TestProbeBrotli_DetectsAndRestoresPosition(t *testing.T) {
	data := brotliPayload(t, "probe me")
	r := bytes.NewReader(data)
	_, _ = r.Seek(3, io.SeekStart)

	ok := probeBrotli(r)
	require.True(t, ok)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.EqualValues(t, 3, pos)
}

func TestOpenZlib_Seekable(t *testing.T) {
	raw := &closableReader{Reader: bytes.NewReader(zlibPayload(t, "zlib payload"))}
	rc, err := openZlib(raw)
	require.NoError(t, err)
	require.Equal(t, "zlib payload", readAllClosing(t, rc))
}

func TestOpenZlib_Sequential(t *testing.T) {
	rc, err := openZlib(io.NopCloser(bytes.NewReader(zlibPayload(t, "seq zlib"))))
	require.NoError(t, err)
	require.Equal(t, "seq zlib", readAllClosing(t, rc))
}

func TestGzipMetadata_ExtractsStoredFilename(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	w.Name = "original.txt"
	_, err := w.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	name, hasName, ok := GzipMetadata(bytes.NewReader(buf.Bytes()))
	require.True(t, ok)
	require.True(t, hasName)
	require.Equal(t, "original.txt", name)
}
