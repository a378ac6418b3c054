// Package metadata collects best-effort facts about a file for the
// classification prompt. Every sub-item fails independently and silently.
package metadata

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/djherbis/times"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

func (r *Reader) Read(_ context.Context, path string) domain.FileMetadata {
	var meta domain.FileMetadata

	if ts, err := times.Stat(path); err == nil {
		if ts.HasBirthTime() {
			meta.CreatedAt = ts.BirthTime()
		} else {
			meta.CreatedAt = ts.ModTime()
		}
	} else {
		r.logger.Debug("metadata_times_unavailable", "file", filepath.Base(path), "error", err)
	}

	meta.SourceDomain = SourceDomain(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".heic":
		meta.ExifDate = ExifDate(path)
	}
	return meta
}
