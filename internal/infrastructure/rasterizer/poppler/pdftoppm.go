// Package poppler renders PDF pages with poppler-utils.
package poppler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type Rasterizer struct {
	binary string
}

func New(binary string) *Rasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &Rasterizer{binary: binary}
}

// RasterizeFirstPage writes page 1 of pdfPath to outPath, which must end
// in .png.
func (r *Rasterizer) RasterizeFirstPage(ctx context.Context, pdfPath, outPath string, dpi int) error {
	if !strings.HasSuffix(outPath, ".png") {
		return fmt.Errorf("rasterize: output %s must be a .png path", outPath)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, buildArgs(pdfPath, outPath, dpi)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func buildArgs(pdfPath, outPath string, dpi int) []string {
	if dpi <= 0 {
		dpi = 200
	}
	return []string{
		"-r", strconv.Itoa(dpi),
		"-f", "1", "-l", "1",
		"-png", "-singlefile",
		pdfPath,
		strings.TrimSuffix(outPath, ".png"),
	}
}
