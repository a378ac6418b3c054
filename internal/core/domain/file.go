package domain

import (
	"strings"
	"time"
)

// ContentKind selects the extraction handler for a file.
type ContentKind int

const (
	KindUnknown ContentKind = iota
	KindInstaller
	KindCloudProxy
	KindPDF
	KindImage
	KindText
	KindSpreadsheet
)

func (k ContentKind) String() string {
	switch k {
	case KindInstaller:
		return "installer"
	case KindCloudProxy:
		return "cloud_proxy"
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindSpreadsheet:
		return "spreadsheet"
	default:
		return "unknown"
	}
}

// FileMetadata holds best-effort facts about a file. Zero values mean absent.
type FileMetadata struct {
	CreatedAt    time.Time `json:"created_at,omitempty"`
	SourceDomain string    `json:"source_domain,omitempty"`
	ExifDate     string    `json:"exif_date,omitempty"`
}

func (m FileMetadata) Render() string {
	lines := make([]string, 0, 3)
	if !m.CreatedAt.IsZero() {
		lines = append(lines, "System Created: "+m.CreatedAt.Format("2006-01-02"))
	}
	if m.SourceDomain != "" {
		lines = append(lines, "Source Domain: "+m.SourceDomain)
	}
	if m.ExifDate != "" {
		lines = append(lines, "EXIF Date: "+m.ExifDate)
	}
	return strings.Join(lines, "\n")
}

// Extraction is produced per file and discarded after use.
// Empty Text means no text was found, which is valid input downstream.
type Extraction struct {
	Kind     ContentKind  `json:"kind"`
	Text     string       `json:"text"`
	Metadata FileMetadata `json:"metadata"`
}

func (e Extraction) HasText() bool {
	return strings.TrimSpace(e.Text) != ""
}

func (k ContentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
