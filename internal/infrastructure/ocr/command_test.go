package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandArgs(t *testing.T) {
	require.Equal(t,
		[]string{"--accurate", "--input=/tmp/a.png", "--lang", "pt"},
		expandArgs([]string{"--accurate", "--input={image}", "--lang", "pt"}, "/tmp/a.png"))
	require.Equal(t,
		[]string{"--fast", "/tmp/a.png"},
		expandArgs([]string{"--fast"}, "/tmp/a.png"))
}

func TestNewTesseractArgs(t *testing.T) {
	engine := NewTesseract("", "por+eng", nil)
	require.Equal(t, "tesseract", engine.binary)
	require.Equal(t, []string{"/x.png", "stdout", "-l", "por+eng"}, expandArgs(engine.args, "/x.png"))
}

func TestSelectPrefersInstalledNative(t *testing.T) {
	native := NewCommand("native", "vision-ocr", nil, nil)
	tess := NewTesseract("tesseract", "eng", nil)
	installed := map[string]bool{"vision-ocr": true, "tesseract": true}
	look := func(bin string) (string, error) {
		if installed[bin] {
			return "/usr/local/bin/" + bin, nil
		}
		return "", errors.New("not found")
	}

	require.Equal(t, "native", Select(native, tess, look).Name())

	installed["vision-ocr"] = false
	native = NewCommand("native", "vision-ocr", nil, nil)
	require.Equal(t, "tesseract", Select(native, tess, look).Name())

	installed["tesseract"] = false
	tess = NewTesseract("tesseract", "eng", nil)
	require.Equal(t, "disabled", Select(nil, tess, look).Name())
}

func TestRecognizeTextReturnsStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-ocr")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"  LAUDO $1  \"\n"), 0o755))

	text := NewCommand("fake", script, []string{"{image}"}, nil).RecognizeText(context.Background(), "hemograma.png")
	require.Equal(t, "LAUDO hemograma.png", text)
}

func TestRecognizeTextSwallowsFailures(t *testing.T) {
	engine := NewCommand("missing", filepath.Join(t.TempDir(), "nope"), nil, nil)
	require.Empty(t, engine.RecognizeText(context.Background(), "/x.png"))
	require.Empty(t, Disabled{}.RecognizeText(context.Background(), "/x.png"))
}
