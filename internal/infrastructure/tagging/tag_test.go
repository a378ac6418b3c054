package tagging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	found := func(string) (string, error) { return "/usr/local/bin/tag", nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	require.Equal(t, "/custom/tag", Discover("/custom/tag", missing))
	require.Equal(t, "/usr/local/bin/tag", Discover("", found))
	require.Equal(t, "/opt/homebrew/bin/tag", Discover("", missing))
}

func TestTagInvokesBinaryWithAddFlag(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script tagger")
	}
	dir := t.TempDir()
	log := filepath.Join(dir, "calls")
	script := filepath.Join(dir, "tag")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+log+"\n"), 0o755))

	require.NoError(t, NewCLITagger(script).Tag(context.Background(), "Saude", "/cloud/Saude/a.pdf"))
	data, err := os.ReadFile(log)
	require.NoError(t, err)
	require.Equal(t, "-a Saude /cloud/Saude/a.pdf\n", string(data))
}

func TestTagMissingBinaryFails(t *testing.T) {
	err := NewCLITagger(filepath.Join(t.TempDir(), "tag")).Tag(context.Background(), "x", "/y")
	require.Error(t, err)
}
