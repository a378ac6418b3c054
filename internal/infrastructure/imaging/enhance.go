// Package imaging prepares photos and scans for OCR.
package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	contrastFactor = 2.0
	binarizeAt     = 140
)

// Enhancer writes a high-contrast black and white PNG next to the temp dir.
// Formats the decoder does not know (HEIC) are passed through untouched.
type Enhancer struct {
	tempDir  string
	maxWidth int
	logger   *slog.Logger
}

func NewEnhancer(tempDir string, maxWidth int, logger *slog.Logger) *Enhancer {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enhancer{tempDir: tempDir, maxWidth: maxWidth, logger: logger}
}

// Enhance returns the enhanced image path and true, or the original path and
// false when anything goes wrong.
func (e *Enhancer) Enhance(_ context.Context, imagePath string) (string, bool) {
	out, err := e.enhance(imagePath)
	if err != nil {
		e.logger.Debug("enhance_skipped", "file", filepath.Base(imagePath), "error", err)
		return imagePath, false
	}
	return out, true
}

func (e *Enhancer) enhance(imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if e.maxWidth > 0 && img.Bounds().Dx() > e.maxWidth {
		img = resize.Resize(uint(e.maxWidth), 0, img, resize.Lanczos3)
	}
	bw := Binarize(Contrast(Grayscale(img), contrastFactor), binarizeAt)

	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	outPath := filepath.Join(e.tempDir, "enhance_"+stem+".png")
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create enhanced image: %w", err)
	}
	if err := png.Encode(out, bw); err != nil {
		out.Close()
		_ = os.Remove(outPath)
		return "", fmt.Errorf("encode enhanced image: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("close enhanced image: %w", err)
	}
	return outPath, nil
}

func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// Contrast scales every pixel's distance from the mean luminance by factor.
func Contrast(gray *image.Gray, factor float64) *image.Gray {
	if len(gray.Pix) == 0 {
		return gray
	}
	var sum float64
	for _, p := range gray.Pix {
		sum += float64(p)
	}
	mean := sum / float64(len(gray.Pix))

	out := image.NewGray(gray.Rect)
	for i, p := range gray.Pix {
		v := mean + (float64(p)-mean)*factor
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		out.Pix[i] = uint8(v + 0.5)
	}
	return out
}

func Binarize(gray *image.Gray, threshold uint8) *image.Gray {
	out := image.NewGray(gray.Rect)
	for i, p := range gray.Pix {
		if p >= threshold {
			out.Pix[i] = 255
		}
	}
	return out
}
