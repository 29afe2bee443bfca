package stream

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type closableReader struct {
	*bytes.Reader
	closed bool
}

func (c *closableReader) Close() error {
	c.closed = true
	return nil
}

func gzipDecoder(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}

func gzipBytes(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestDecompressorStream(t *testing.T, payload string) (*DecompressorStream, *closableReader) {
	t.Helper()
	raw := &closableReader{Reader: bytes.NewReader(gzipBytes(t, payload))}
	return NewDecompressorStream(raw, gzipDecoder), raw
}

func TestDecompressorStream_ReadFull(t *testing.T) {
	s, _ := newTestDecompressorStream(t, "hello, archivey")
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "hello, archivey", string(got))
}

func TestDecompressorStream_Seekable(t *testing.T) {
	s, _ := newTestDecompressorStream(t, "data")
	require.True(t, s.Seekable())
}

func TestDecompressorStream_SeekForwardDiscardsRead(t *testing.T) {
	s, _ := newTestDecompressorStream(t, "0123456789")
	pos, err := s.Seek(5, io.SeekStart)
	require.NoError(t, err)
	require.EqualValues(t, 5, pos)

	rest, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "56789", string(rest))
}

func TestDecompressorStream_SeekBackwardRewindsAndReplays(t *testing.T) {
	s, _ := newTestDecompressorStream(t, "0123456789")
	buf := make([]byte, 8)
	n, err := io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	pos, err := s.Seek(2, io.SeekStart)
	require.NoError(t, err)
	require.EqualValues(t, 2, pos)

	rest, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "23456789", string(rest))
}

func TestDecompressorStream_SeekEndCachesSize(t *testing.T) {
	s, _ := newTestDecompressorStream(t, "0123456789")
	_, ok := s.Size()
	require.False(t, ok)

	pos, err := s.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.EqualValues(t, 10, pos)

	size, ok := s.Size()
	require.True(t, ok)
	require.EqualValues(t, 10, size)
}

func TestDecompressorStream_CloseClosesRawAndIsIdempotent(t *testing.T) {
	s, raw := newTestDecompressorStream(t, "x")
	require.NoError(t, s.Close())
	require.True(t, raw.closed)
	require.NoError(t, s.Close())
}

func TestDecompressorStream_ReadAfterCloseErrors(t *testing.T) {
	s, _ := newTestDecompressorStream(t, "x")
	require.NoError(t, s.Close())
	_, err := s.Read(make([]byte, 1))
	require.Error(t, err)
}

func TestSequentialAdapter_NotSeekable(t *testing.T) {
	gz, err := gzip.NewReader(bytes.NewReader(gzipBytes(t, "x")))
	require.NoError(t, err)
	a := &sequentialAdapter{rc: gz}
	require.False(t, a.Seekable())
	_, err = a.Seek(0, io.SeekStart)
	require.Error(t, err)
}
