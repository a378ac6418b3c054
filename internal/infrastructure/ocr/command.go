// Package ocr runs external OCR engines as subprocesses.
package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

const imagePlaceholder = "{image}"

// CommandOCR runs an OCR program and returns its stdout. Failures yield "".
type CommandOCR struct {
	name   string
	binary string
	args   []string
	logger *slog.Logger
}

// NewCommand builds an engine from a binary and an argument template where
// {image} is replaced by the image path. Without a placeholder the image path
// is appended.
func NewCommand(name, binary string, args []string, logger *slog.Logger) *CommandOCR {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandOCR{name: name, binary: binary, args: args, logger: logger}
}

// NewTesseract prints recognized text to stdout for the given languages.
func NewTesseract(binary, languages string, logger *slog.Logger) *CommandOCR {
	if binary == "" {
		binary = "tesseract"
	}
	args := []string{imagePlaceholder, "stdout"}
	if languages != "" {
		args = append(args, "-l", languages)
	}
	return NewCommand("tesseract", binary, args, logger)
}

func (c *CommandOCR) Name() string {
	return c.name
}

func (c *CommandOCR) RecognizeText(ctx context.Context, imagePath string) string {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, expandArgs(c.args, imagePath)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		c.logger.Warn("ocr_failed",
			"engine", c.name,
			"file", filepath.Base(imagePath),
			"error", err,
			"stderr", strings.TrimSpace(stderr.String()),
		)
		return ""
	}
	return strings.TrimSpace(stdout.String())
}

func expandArgs(template []string, imagePath string) []string {
	args := make([]string, 0, len(template)+1)
	substituted := false
	for _, arg := range template {
		if strings.Contains(arg, imagePlaceholder) {
			arg = strings.ReplaceAll(arg, imagePlaceholder, imagePath)
			substituted = true
		}
		args = append(args, arg)
	}
	if !substituted {
		args = append(args, imagePath)
	}
	return args
}

// Disabled is used when no OCR engine is installed.
type Disabled struct{}

func (Disabled) RecognizeText(context.Context, string) string { return "" }

func (Disabled) Name() string { return "disabled" }

// Engine is an OCR implementation that can report its name.
type Engine interface {
	RecognizeText(ctx context.Context, imagePath string) string
	Name() string
}

// Select prefers the native high-accuracy engine when its binary is
// installed, then tesseract, then nothing.
func Select(native, tesseract *CommandOCR, lookPath func(string) (string, error)) Engine {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, candidate := range []*CommandOCR{native, tesseract} {
		if candidate == nil || candidate.binary == "" {
			continue
		}
		if resolved, err := lookPath(candidate.binary); err == nil {
			candidate.binary = resolved
			return candidate
		}
	}
	return Disabled{}
}
