package ports

import (
	"context"
	"io/fs"
	"time"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

// ContentExtractor produces the bounded text sample and metadata of a file.
// A returned error means the file is unreadable and must not be processed.
type ContentExtractor interface {
	Extract(ctx context.Context, path string) (domain.Extraction, error)
}

// DomainScorer computes keyword affinity per domain.
type DomainScorer interface {
	ScoreAll(text string) domain.DomainScores
}

// Decider turns extraction and scores into a classification decision.
// It never fails; backend problems yield a fallback decision.
type Decider interface {
	Decide(ctx context.Context, path string, extraction domain.Extraction, scores domain.DomainScores) domain.Decision
}

// Disposer runs the local-first rename/copy/tag/cleanup sequence.
type Disposer interface {
	Dispose(ctx context.Context, src string, category domain.Category, newName string) domain.DispositionResult
}

// OCR recognizes text in an image. Implementations swallow their own errors
// and return empty text instead.
type OCR interface {
	RecognizeText(ctx context.Context, imagePath string) string
}

// ImageEnhancer prepares an image for OCR. When temp is true the caller owns
// the returned file and removes it.
type ImageEnhancer interface {
	Enhance(ctx context.Context, imagePath string) (outPath string, temp bool)
}

// PageRasterizer renders the first page of a PDF to a PNG at outPath.
type PageRasterizer interface {
	RasterizeFirstPage(ctx context.Context, pdfPath, outPath string, dpi int) error
}

// MetadataReader collects best-effort file metadata. It never fails.
type MetadataReader interface {
	Read(ctx context.Context, path string) domain.FileMetadata
}

// ClassificationBackend is the opaque prompt-in/JSON-out AI service.
type ClassificationBackend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DecisionCache remembers raw backend replies by request fingerprint.
type DecisionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, reply string) error
}

// FileStore holds the filesystem primitives used by the disposition steps.
type FileStore interface {
	Stat(path string) (fs.FileInfo, error)
	Rename(from, to string) error
	MkdirAll(dir string) error
	// CopyFile copies bytes, mode and modification time. On failure nothing
	// is left at dst.
	CopyFile(ctx context.Context, src, dst string) error
	Remove(path string) error
}

// Tagger applies a label to a file. Errors are advisory.
type Tagger interface {
	Tag(ctx context.Context, tag, path string) error
}

// Clock is injected so collision suffixes and settle delays are testable.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

// OutcomeJournal persists the terminal state of every handled file.
type OutcomeJournal interface {
	Record(ctx context.Context, outcome domain.FileOutcome) error
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}

// EventPublisher announces organized files to other processes.
type EventPublisher interface {
	PublishFileOrganized(ctx context.Context, outcome domain.FileOutcome) error
}

// OutcomeRecorder receives every outcome for metrics.
type OutcomeRecorder interface {
	ObserveOutcome(outcome domain.FileOutcome, duration time.Duration)
}
