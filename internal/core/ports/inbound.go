package ports

import (
	"context"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

// FileOrganizer is the inbound contract for the classification pipeline.
type FileOrganizer interface {
	OrganizeFile(ctx context.Context, path string, dryRun bool) domain.FileOutcome
	OrganizeBatch(ctx context.Context, paths []string, dryRun bool) []domain.FileOutcome
}

// FileInspector exposes extraction and scoring without deciding or moving.
type FileInspector interface {
	Inspect(ctx context.Context, path string) (domain.Extraction, domain.DomainScores, error)
}
