// Package tagging applies Finder labels through the `tag` command line tool.
package tagging

import (
	"context"
	"fmt"
	"os/exec"
)

type CLITagger struct {
	binary string
}

func NewCLITagger(binary string) *CLITagger {
	return &CLITagger{binary: binary}
}

func (t *CLITagger) Tag(ctx context.Context, tag, path string) error {
	cmd := exec.CommandContext(ctx, t.binary, "-a", tag, path)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tag -a %s: %w", tag, err)
	}
	return nil
}

// Discover returns the configured binary, else `tag` from PATH, else the
// Homebrew location. The result may not exist; tagging errors are advisory.
func Discover(configured string, lookPath func(string) (string, error)) string {
	if configured != "" {
		return configured
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if path, err := lookPath("tag"); err == nil {
		return path
	}
	return "/opt/homebrew/bin/tag"
}
