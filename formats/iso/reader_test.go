package iso

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/member"
)

type memStream struct {
	*bytes.Reader
}

func newMemStream(b []byte) *memStream { return &memStream{Reader: bytes.NewReader(b)} }

func (m *memStream) Close() error        { return nil }
func (m *memStream) Seekable() bool      { return true }
func (m *memStream) Size() (int64, bool) { return m.Reader.Size(), true }

// dirRecord builds one ECMA-119 directory record, padded to an even
// length the way real ISO-9660 images pad every record.
func dirRecord(name string, extent, size uint32, isDir bool) []byte {
	length := 33 + len(name)
	if length%2 != 0 {
		length++
	}
	rec := make([]byte, length)
	rec[0] = byte(length)
	binary.LittleEndian.PutUint32(rec[2:6], extent)
	binary.BigEndian.PutUint32(rec[6:10], extent)
	binary.LittleEndian.PutUint32(rec[10:14], size)
	binary.BigEndian.PutUint32(rec[14:18], size)
	if isDir {
		rec[25] = dirFlagDir
	}
	binary.LittleEndian.PutUint16(rec[28:30], 1)
	binary.BigEndian.PutUint16(rec[30:32], 1)
	rec[32] = byte(len(name))
	copy(rec[33:], name)
	return rec
}

// buildISO assembles a minimal single-level ISO-9660 image: a PVD at
// sector 16, the root directory's extent at sector 20 listing "." ".."
// and one file, and the file's content at sector 21.
func buildISO(t *testing.T, fileName, content string) []byte {
	t.Helper()

	const rootExtent = 20
	const fileExtent = 21

	dot := dirRecord("\x00", rootExtent, 0, true)
	dotdot := dirRecord("\x01", rootExtent, 0, true)
	file := dirRecord(fileName, fileExtent, uint32(len(content)), false)
	dirData := append(append(dot, dotdot...), file...)

	totalSectors := fileExtent + 1
	img := make([]byte, totalSectors*sectorSize)

	pvd := img[pvdSector*sectorSize : pvdSector*sectorSize+sectorSize]
	pvd[0] = 1
	copy(pvd[1:6], isoMagic)
	rootRec := dirRecord("\x00", rootExtent, uint32(len(dirData)), true)
	copy(pvd[156:156+len(rootRec)], rootRec)

	copy(img[rootExtent*sectorSize:], dirData)
	copy(img[fileExtent*sectorSize:], content)

	return img
}

func TestIsoOpen_RequiresSeekableStream(t *testing.T) {
	_, err := Open(archivereader.Source{}, archivereader.Options{})
	require.Error(t, err)
}

func TestIsoOpen_RejectsMissingPVD(t *testing.T) {
	_, err := Open(archivereader.Source{Stream: newMemStream(make([]byte, 20*sectorSize))}, archivereader.Options{})
	require.Error(t, err)
}

func TestIsoOpen_RegistersFileMember(t *testing.T) {
	img := buildISO(t, "FILE.TXT;1", "hello iso")
	rd, err := Open(archivereader.Source{Stream: newMemStream(img)}, archivereader.Options{})
	require.NoError(t, err)
	defer rd.Close()

	m, err := rd.GetMember("FILE.TXT")
	require.NoError(t, err)
	require.Equal(t, member.TypeFile, m.Type)
	require.EqualValues(t, len("hello iso"), *m.FileSize)
}

func TestIsoOpen_ReadFileContent(t *testing.T) {
	img := buildISO(t, "FILE.TXT;1", "hello iso")
	rd, err := Open(archivereader.Source{Stream: newMemStream(img)}, archivereader.Options{})
	require.NoError(t, err)
	defer rd.Close()

	m, err := rd.GetMember("FILE.TXT")
	require.NoError(t, err)

	s, err := rd.Open(m)
	require.NoError(t, err)
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "hello iso", string(got))
}

func TestIsoOpen_StripsVersionSuffix(t *testing.T) {
	img := buildISO(t, "README.MD;1", "docs")
	rd, err := Open(archivereader.Source{Stream: newMemStream(img)}, archivereader.Options{})
	require.NoError(t, err)
	defer rd.Close()

	_, err = rd.GetMember("README.MD")
	require.NoError(t, err)
}
