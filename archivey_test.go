package archivey

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func writeTempTarGz(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.tar.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Size: int64(len(content)), Mode: 0o644}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err = tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return path
}

func TestOpen_Zip(t *testing.T) {
	path := writeTempZip(t, map[string]string{"hello.txt": "hello world"})

	rd, err := Open(path)
	require.NoError(t, err)
	defer rd.Close()

	m, err := rd.GetMember("hello.txt")
	require.NoError(t, err)

	s, err := rd.Open(m)
	require.NoError(t, err)
	defer s.Close()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}

func TestOpen_TarGzLayering(t *testing.T) {
	path := writeTempTarGz(t, map[string]string{"a.txt": "one", "b.txt": "two"})

	rd, err := Open(path)
	require.NoError(t, err)
	defer rd.Close()

	members, err := rd.GetMembers()
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestOpen_Folder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("content"), 0o644))

	rd, err := Open(dir)
	require.NoError(t, err)
	defer rd.Close()

	m, err := rd.GetMember("file.txt")
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestOpen_SequentialGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("piped content"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	rd, err := Open(io.NopCloser(bytes.NewReader(buf.Bytes())))
	require.NoError(t, err)
	defer rd.Close()

	members, err := rd.GetMembers()
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestOpen_UnsupportedSourceType(t *testing.T) {
	_, err := Open(42)
	require.Error(t, err)
}

func writeTempGzip(t *testing.T, innerName, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), innerName+".gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	gz.Name = innerName
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

func TestOpen_Gzip_DefaultNameDerivedFromOuterFilename(t *testing.T) {
	path := writeTempGzip(t, "inner-notes.txt", "hello")

	rd, err := Open(path)
	require.NoError(t, err)
	defer rd.Close()

	members, err := rd.GetMembers()
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, filepath.Base(path), members[0].Filename+".gz")
}

func TestOpen_Gzip_StoredMetadataUsesEmbeddedName(t *testing.T) {
	path := writeTempGzip(t, "inner-notes.txt", "hello")

	rd, err := Open(path, WithStoredMetadata())
	require.NoError(t, err)
	defer rd.Close()

	members, err := rd.GetMembers()
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "inner-notes.txt", members[0].Filename)
}

func TestOpen_GetMemberByID(t *testing.T) {
	path := writeTempZip(t, map[string]string{"hello.txt": "hello world"})

	rd, err := Open(path)
	require.NoError(t, err)
	defer rd.Close()

	m, err := rd.GetMember("hello.txt")
	require.NoError(t, err)

	byID, err := rd.GetMemberByID(m.ID)
	require.NoError(t, err)
	require.Equal(t, m, byID)
}

func TestOpen_ExtractAll(t *testing.T) {
	path := writeTempZip(t, map[string]string{"a/hello.txt": "hello world"})

	rd, err := Open(path)
	require.NoError(t, err)
	defer rd.Close()

	dest := t.TempDir()
	require.NoError(t, rd.ExtractAll(dest, nil, 0))

	got, err := os.ReadFile(filepath.Join(dest, "a", "hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}
