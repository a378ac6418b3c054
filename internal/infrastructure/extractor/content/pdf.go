package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	pdfTextPages   = 2
	minNativeChars = 50
)

// extractPDF reads the text layer of the first pages and falls back to OCR of
// page 1 when the text layer is (almost) empty.
func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	text, err := pdfText(path, pdfTextPages)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(text)) >= minNativeChars || e.rasterizer == nil {
		return text, nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	page := filepath.Join(e.tempDir, "ocr_"+stem+".png")
	defer os.Remove(page)

	if err := e.rasterizer.RasterizeFirstPage(ctx, path, page, e.dpi); err != nil {
		return "", fmt.Errorf("rasterize first page: %w", err)
	}
	e.logger.Info("pdf_ocr_fallback", "file", filepath.Base(path))
	return text + e.recognize(ctx, page), nil
}

func pdfText(path string, maxPages int) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages && i <= maxPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
