package metadata

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// HEIC stores EXIF in an item near the start of the file.
const heicScanLimit = 1 << 20

var rawExifMarker = []byte("Exif\x00\x00")

// ExifDate returns DateTimeOriginal as YYYY-MM-DD, or "".
func ExifDate(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		x, err = decodeEmbeddedExif(f)
		if err != nil {
			return ""
		}
	}
	return dateTimeOriginal(x)
}

func decodeEmbeddedExif(f *os.File) (*exif.Exif, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	head, err := io.ReadAll(io.LimitReader(f, heicScanLimit))
	if err != nil {
		return nil, err
	}
	idx := bytes.Index(head, rawExifMarker)
	if idx < 0 {
		return nil, io.EOF
	}
	return exif.Decode(bytes.NewReader(head[idx:]))
}

func dateTimeOriginal(x *exif.Exif) string {
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	date, _, _ := strings.Cut(strings.TrimSpace(value), " ")
	if len(date) != len("2006:01:02") {
		return ""
	}
	return strings.ReplaceAll(date, ":", "-")
}
