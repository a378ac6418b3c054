// Package content extracts a bounded text sample from a file, dispatching on
// its extension.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

const MaxTextChars = 5000

var kindsByExtension = map[string]domain.ContentKind{
	".dmg":     domain.KindInstaller,
	".pkg":     domain.KindInstaller,
	".iso":     domain.KindInstaller,
	".zip":     domain.KindInstaller,
	".rar":     domain.KindInstaller,
	".gdoc":    domain.KindCloudProxy,
	".gsheet":  domain.KindCloudProxy,
	".gslides": domain.KindCloudProxy,
	".pdf":     domain.KindPDF,
	".jpg":     domain.KindImage,
	".jpeg":    domain.KindImage,
	".png":     domain.KindImage,
	".heic":    domain.KindImage,
	".webp":    domain.KindImage,
	".html":    domain.KindText,
	".txt":     domain.KindText,
	".md":      domain.KindText,
	".xlsx":    domain.KindSpreadsheet,
}

// KindOf classifies a path by its lower-cased extension.
func KindOf(path string) domain.ContentKind {
	return kindsByExtension[strings.ToLower(filepath.Ext(path))]
}

type handler func(ctx context.Context, path string) (string, error)

type Options struct {
	TempDir      string
	PDFRasterDPI int
}

type Extractor struct {
	ocr        ports.OCR
	enhancer   ports.ImageEnhancer
	rasterizer ports.PageRasterizer
	metadata   ports.MetadataReader
	tempDir    string
	dpi        int
	logger     *slog.Logger

	handlers map[domain.ContentKind]handler
}

func NewExtractor(
	ocr ports.OCR,
	enhancer ports.ImageEnhancer,
	rasterizer ports.PageRasterizer,
	metadata ports.MetadataReader,
	opts Options,
	logger *slog.Logger,
) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.PDFRasterDPI <= 0 {
		opts.PDFRasterDPI = 200
	}
	e := &Extractor{
		ocr:        ocr,
		enhancer:   enhancer,
		rasterizer: rasterizer,
		metadata:   metadata,
		tempDir:    opts.TempDir,
		dpi:        opts.PDFRasterDPI,
		logger:     logger,
	}
	e.handlers = map[domain.ContentKind]handler{
		domain.KindInstaller:   describeInstaller,
		domain.KindCloudProxy:  describeCloudProxy,
		domain.KindPDF:         e.extractPDF,
		domain.KindImage:       e.extractImage,
		domain.KindText:        readText,
		domain.KindSpreadsheet: readSpreadsheet,
	}
	return e
}

// Extract returns an ErrUnreadable error when the file could not be read.
// An empty Text with a nil error means the file simply has no text.
func (e *Extractor) Extract(ctx context.Context, path string) (domain.Extraction, error) {
	kind := KindOf(path)
	extraction := domain.Extraction{Kind: kind}
	if e.metadata != nil {
		extraction.Metadata = e.metadata.Read(ctx, path)
	}

	h, ok := e.handlers[kind]
	if !ok {
		return extraction, nil
	}
	text, err := runHandler(ctx, h, path)
	if err != nil {
		return domain.Extraction{}, domain.WrapError(domain.ErrUnreadable, "extract "+kind.String(), err)
	}
	extraction.Text = truncate(text, MaxTextChars)
	e.logger.Debug("content_extracted", "file", filepath.Base(path), "kind", kind.String(), "chars", len([]rune(extraction.Text)))
	return extraction, nil
}

// runHandler converts decoder panics on malformed files into errors.
func runHandler(ctx context.Context, h handler, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while reading %s: %v", filepath.Base(path), r)
		}
	}()
	return h(ctx, path)
}

func describeInstaller(_ context.Context, path string) (string, error) {
	return fmt.Sprintf("FILE NAME: %s\nTYPE: software installer / binary.", filepath.Base(path)), nil
}

func describeCloudProxy(_ context.Context, path string) (string, error) {
	return fmt.Sprintf("CLOUD FILE: classify ONLY by the file name: '%s'", filepath.Base(path)), nil
}

func (e *Extractor) recognize(ctx context.Context, imagePath string) string {
	if e.ocr == nil {
		return ""
	}
	processed, temp := imagePath, false
	if e.enhancer != nil {
		processed, temp = e.enhancer.Enhance(ctx, imagePath)
	}
	if temp {
		defer os.Remove(processed)
	}
	return e.ocr.RecognizeText(ctx, processed)
}

func truncate(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
