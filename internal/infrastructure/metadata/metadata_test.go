package metadata

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

// rawExif builds "Exif\0\0" + a little-endian TIFF whose Exif IFD carries
// DateTimeOriginal.
func rawExif(dateTime string) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	put16 := func(v uint16) { _ = binary.Write(&b, le, v) }
	put32 := func(v uint32) { _ = binary.Write(&b, le, v) }

	b.WriteString("II")
	put16(42)
	put32(8)

	// IFD0: one entry pointing at the Exif IFD.
	put16(1)
	put16(0x8769)
	put16(4)
	put32(1)
	put32(26)
	put32(0)

	// Exif IFD: DateTimeOriginal, ASCII, 20 bytes stored at offset 44.
	put16(1)
	put16(0x9003)
	put16(2)
	put32(20)
	put32(44)
	put32(0)

	b.WriteString(dateTime)
	b.WriteByte(0)

	return append([]byte("Exif\x00\x00"), b.Bytes()...)
}

func TestExifDateFromEmbeddedBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_0001.heic")
	payload := append([]byte("....ftypheic....meta...."), rawExif("2023:05:20 10:11:12")...)
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	require.Equal(t, "2023-05-20", ExifDate(path))
}

func TestExifDateMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not a jpeg"), 0o644))

	require.Empty(t, ExifDate(path))
	require.Empty(t, ExifDate(filepath.Join(dir, "absent.jpg")))
}

func TestFirstURLHost(t *testing.T) {
	require.Equal(t, "example.org:8080", firstURLHost([]byte("http://example.org:8080/a")))
	require.Empty(t, firstURLHost([]byte("no urls here")))
}

func TestFirstURLHostDecodesWhereFroms(t *testing.T) {
	raw, err := plist.Marshal([]string{"https://example.com", "https://ref.org/x"}, plist.BinaryFormat)
	require.NoError(t, err)
	require.Equal(t, "example.com", firstURLHost(raw))

	raw, err = plist.Marshal([]string{"", "https://www.gov.br/receita/darf.pdf?x=1"}, plist.BinaryFormat)
	require.NoError(t, err)
	require.Equal(t, "www.gov.br", firstURLHost(raw))
}

func TestReaderCollectsCreationDate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	meta := NewReader(nil).Read(context.Background(), path)
	require.False(t, meta.CreatedAt.IsZero())
	require.Empty(t, meta.ExifDate)
}

func TestReaderToleratesMissingFile(t *testing.T) {
	meta := NewReader(nil).Read(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"))
	require.True(t, meta.CreatedAt.IsZero())
	require.Empty(t, meta.SourceDomain)
	require.Empty(t, meta.ExifDate)
}
