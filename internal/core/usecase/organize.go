package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

type OrganizeUseCase struct {
	extractor ports.ContentExtractor
	scorer    ports.DomainScorer
	decider   ports.Decider
	disposer  ports.Disposer
	catalog   domain.Catalog
	logger    *slog.Logger

	stat      func(string) (fs.FileInfo, error)
	journal   ports.OutcomeJournal
	publisher ports.EventPublisher
	recorder  ports.OutcomeRecorder
}

type OrganizeOption func(*OrganizeUseCase)

func WithJournal(journal ports.OutcomeJournal) OrganizeOption {
	return func(uc *OrganizeUseCase) {
		uc.journal = journal
	}
}

func WithPublisher(publisher ports.EventPublisher) OrganizeOption {
	return func(uc *OrganizeUseCase) {
		uc.publisher = publisher
	}
}

func WithRecorder(recorder ports.OutcomeRecorder) OrganizeOption {
	return func(uc *OrganizeUseCase) {
		uc.recorder = recorder
	}
}

func NewOrganizeUseCase(
	extractor ports.ContentExtractor,
	scorer ports.DomainScorer,
	decider ports.Decider,
	disposer ports.Disposer,
	catalog domain.Catalog,
	logger *slog.Logger,
	opts ...OrganizeOption,
) *OrganizeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	uc := &OrganizeUseCase{
		extractor: extractor,
		scorer:    scorer,
		decider:   decider,
		disposer:  disposer,
		catalog:   catalog,
		logger:    logger,
		stat:      os.Stat,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// OrganizeBatch handles paths strictly in order. A failing file never stops
// the batch; only context cancellation does.
func (uc *OrganizeUseCase) OrganizeBatch(ctx context.Context, paths []string, dryRun bool) []domain.FileOutcome {
	runID := uuid.NewString()
	outcomes := make([]domain.FileOutcome, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			uc.logger.Warn("batch_cancelled", "run_id", runID, "remaining", len(paths)-len(outcomes), "error", err)
			break
		}
		outcomes = append(outcomes, uc.organize(ctx, runID, path, dryRun))
	}
	return outcomes
}

func (uc *OrganizeUseCase) OrganizeFile(ctx context.Context, path string, dryRun bool) domain.FileOutcome {
	return uc.organize(ctx, uuid.NewString(), path, dryRun)
}

func (uc *OrganizeUseCase) organize(ctx context.Context, runID, path string, dryRun bool) domain.FileOutcome {
	started := time.Now()
	outcome := uc.process(ctx, domain.FileOutcome{RunID: runID, Path: path}, dryRun)
	uc.finish(ctx, outcome, dryRun, time.Since(started))
	return outcome
}

func (uc *OrganizeUseCase) process(ctx context.Context, outcome domain.FileOutcome, dryRun bool) domain.FileOutcome {
	path := outcome.Path
	if reason, skip := uc.skipReason(path); skip {
		outcome.Status = domain.OutcomeSkipped
		outcome.SkipReason = reason
		uc.logger.Debug("file_skipped", "file", path, "reason", reason)
		return outcome
	}

	name := filepath.Base(path)
	uc.logger.Info("processing_file", "file", name, "run_id", outcome.RunID)

	extraction, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		outcome.Status = domain.OutcomeUnreadable
		outcome.Err = err
		uc.logger.Error("file_unreadable", "file", name, "error", err)
		return outcome
	}
	outcome.Kind = extraction.Kind

	scores := uc.scorer.ScoreAll(extraction.Text)
	if len(scores) > 0 {
		outcome.TopDomain = scores[0].Domain
	}

	decision := uc.decider.Decide(ctx, path, extraction, scores)
	outcome.Fallback = decision.Fallback

	key := uc.resolveCategory(extraction.Kind, decision.Category)
	category, ok := uc.catalog.Get(key)
	if !ok {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = domain.WrapError(domain.ErrConfig, "resolve category", fmt.Errorf("category %q is not configured", key))
		uc.logger.Error("category_unavailable", "file", name, "category", key)
		return outcome
	}
	outcome.Category = category.Key
	outcome.NewName = SanitizeFilename(decision.NewName, name)
	outcome.Destination = filepath.Join(category.Path, outcome.NewName)

	if dryRun {
		outcome.Status = domain.OutcomeDryRun
		uc.logger.Info("dry_run",
			"file", name,
			"category", outcome.Category,
			"destination", outcome.Destination,
			"thought", decision.Thought,
		)
		return outcome
	}

	result := uc.disposer.Dispose(ctx, path, category, outcome.NewName)
	outcome.Disposition = &result
	outcome.Err = result.Err
	switch result.Status {
	case domain.DispositionOrganized:
		outcome.Status = domain.OutcomeOrganized
	case domain.DispositionLocalLeftover:
		outcome.Status = domain.OutcomeLocalLeftover
	default:
		outcome.Status = domain.OutcomeFailed
	}
	if result.DestinationPath != "" {
		outcome.Destination = result.DestinationPath
	}
	if result.Succeeded() {
		uc.logger.Info("file_organized", "file", name, "category", outcome.Category, "destination", outcome.Destination)
	}
	return outcome
}

func (uc *OrganizeUseCase) resolveCategory(kind domain.ContentKind, token string) string {
	if kind == domain.KindInstaller && uc.catalog.InstallerCategory != "" {
		return uc.catalog.InstallerCategory
	}
	key, tier := ResolveCategory(token, uc.catalog)
	if tier != MatchExact {
		uc.logger.Debug("category_resolved", "token", token, "category", key, "tier", tier)
	}
	return key
}

func (uc *OrganizeUseCase) skipReason(path string) (domain.SkipReason, bool) {
	info, err := uc.stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			uc.logger.Warn("stat_failed", "file", path, "error", err)
		}
		return domain.SkipMissing, true
	}
	if info.IsDir() {
		return domain.SkipDirectory, true
	}

	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	for _, ignored := range uc.catalog.Ignore.Extensions {
		if ext != "" && ext == ignored {
			return domain.SkipIgnoredExtension, true
		}
	}
	for _, prefix := range uc.catalog.Ignore.Prefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return domain.SkipIgnoredPrefix, true
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	dir := filepath.Dir(abs)
	for _, part := range strings.Split(dir, string(filepath.Separator)) {
		for _, ignored := range uc.catalog.Ignore.Directories {
			if part != "" && part == ignored {
				return domain.SkipIgnoredDirectory, true
			}
		}
	}
	for _, categoryDir := range uc.catalog.Paths() {
		if isWithin(abs, categoryDir) {
			return domain.SkipAlreadyOrganized, true
		}
	}
	return "", false
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (uc *OrganizeUseCase) finish(ctx context.Context, outcome domain.FileOutcome, dryRun bool, elapsed time.Duration) {
	if uc.recorder != nil {
		uc.recorder.ObserveOutcome(outcome, elapsed)
	}
	if outcome.Status == domain.OutcomeSkipped {
		return
	}
	if uc.journal != nil {
		if err := uc.journal.Record(ctx, outcome); err != nil {
			uc.logger.Warn("journal_record_failed", "file", outcome.Path, "error", err)
		}
	}
	if dryRun || uc.publisher == nil {
		return
	}
	if outcome.Status == domain.OutcomeOrganized || outcome.Status == domain.OutcomeLocalLeftover {
		if err := uc.publisher.PublishFileOrganized(ctx, outcome); err != nil {
			uc.logger.Warn("publish_organized_failed", "file", outcome.Path, "error", err)
		}
	}
}

// Inspect runs extraction and scoring only.
func (uc *OrganizeUseCase) Inspect(ctx context.Context, path string) (domain.Extraction, domain.DomainScores, error) {
	info, err := uc.stat(path)
	if err != nil {
		return domain.Extraction{}, nil, domain.WrapError(domain.ErrInvalidInput, "inspect", err)
	}
	if info.IsDir() {
		return domain.Extraction{}, nil, domain.WrapError(domain.ErrInvalidInput, "inspect", fmt.Errorf("%s is a directory", path))
	}
	extraction, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return domain.Extraction{}, nil, err
	}
	return extraction, uc.scorer.ScoreAll(extraction.Text), nil
}
