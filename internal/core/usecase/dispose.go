package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

type failurePolicy int

const (
	// abortOnFailure stops the sequence and reports the step as failed.
	abortOnFailure failurePolicy = iota
	// ignoreFailure logs and continues.
	ignoreFailure
	// leftoverOnFailure keeps the disposition successful with a local residue.
	leftoverOnFailure
)

type dispositionState struct {
	src          string
	newName      string
	category     domain.Category
	local        string
	destination  string
	alreadyNamed bool
	tagged       bool
}

type dispositionStep struct {
	name     domain.DispositionStep
	onFailed failurePolicy
	run      func(ctx context.Context, st *dispositionState) error
}

// DispositionExecutor performs the local-first sequence: rename in place,
// materialize the category directory, copy, tag, then delete the local file.
// Deletion happens only after the copy succeeded.
type DispositionExecutor struct {
	store       ports.FileStore
	tagger      ports.Tagger
	clock       ports.Clock
	settleDelay time.Duration
	logger      *slog.Logger
}

func NewDispositionExecutor(
	store ports.FileStore,
	tagger ports.Tagger,
	clock ports.Clock,
	settleDelay time.Duration,
	logger *slog.Logger,
) *DispositionExecutor {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DispositionExecutor{
		store:       store,
		tagger:      tagger,
		clock:       clock,
		settleDelay: settleDelay,
		logger:      logger,
	}
}

func (e *DispositionExecutor) steps() []dispositionStep {
	return []dispositionStep{
		{name: domain.StepRename, onFailed: abortOnFailure, run: e.renameLocal},
		{name: domain.StepMaterialize, onFailed: abortOnFailure, run: e.materializeDestination},
		{name: domain.StepCopy, onFailed: abortOnFailure, run: e.copyToDestination},
		{name: domain.StepTag, onFailed: ignoreFailure, run: e.applyTag},
		{name: domain.StepCleanup, onFailed: leftoverOnFailure, run: e.cleanupLocal},
	}
}

func (e *DispositionExecutor) Dispose(
	ctx context.Context,
	src string,
	category domain.Category,
	newName string,
) domain.DispositionResult {
	st := &dispositionState{
		src:      src,
		newName:  newName,
		category: category,
		local:    src,
	}
	result := domain.DispositionResult{Status: domain.DispositionOrganized}

	for _, step := range e.steps() {
		err := step.run(ctx, st)
		if err == nil {
			continue
		}
		stepErr := domain.WrapError(domain.ErrDisposition, string(step.name), err)

		switch step.onFailed {
		case ignoreFailure:
			e.logger.Debug("disposition_step_ignored", "step", step.name, "file", st.local, "error", err)
			continue
		case leftoverOnFailure:
			e.logger.Warn("cleanup_failed", "step", step.name, "file", st.local, "destination", st.destination, "error", err)
			result.Status = domain.DispositionLocalLeftover
			result.Err = stepErr
		default:
			e.logger.Error("disposition_step_failed", "step", step.name, "file", st.local, "error", err)
			result.Status = domain.DispositionFailed
			result.FailedStep = step.name
			result.Err = stepErr
		}
		break
	}

	result.LocalPath = st.local
	result.DestinationPath = st.destination
	result.AlreadyNamed = st.alreadyNamed
	result.Tagged = st.tagged
	return result
}

func (e *DispositionExecutor) renameLocal(_ context.Context, st *dispositionState) error {
	if filepath.Base(st.src) == st.newName {
		st.alreadyNamed = true
		e.logger.Info("name_already_correct", "file", st.src)
		return nil
	}

	target, err := e.freeName(filepath.Dir(st.src), st.newName)
	if err != nil {
		return err
	}
	if err := e.store.Rename(st.src, target); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(st.src), err)
	}
	st.local = target
	e.logger.Info("renamed_local", "from", filepath.Base(st.src), "to", filepath.Base(target))
	return nil
}

func (e *DispositionExecutor) materializeDestination(_ context.Context, st *dispositionState) error {
	if err := e.store.MkdirAll(st.category.Path); err != nil {
		return fmt.Errorf("create category dir %s: %w", st.category.Path, err)
	}
	return nil
}

func (e *DispositionExecutor) copyToDestination(ctx context.Context, st *dispositionState) error {
	dst, err := e.freeName(st.category.Path, filepath.Base(st.local))
	if err != nil {
		return err
	}
	if err := e.store.CopyFile(ctx, st.local, dst); err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	st.destination = dst
	e.logger.Info("copied_to_destination", "destination", dst)
	return nil
}

func (e *DispositionExecutor) applyTag(ctx context.Context, st *dispositionState) error {
	if st.category.Tag == "" || e.tagger == nil {
		return nil
	}
	e.clock.Sleep(ctx, e.settleDelay)
	if err := e.tagger.Tag(ctx, st.category.Tag, st.destination); err != nil {
		return err
	}
	st.tagged = true
	return nil
}

func (e *DispositionExecutor) cleanupLocal(_ context.Context, st *dispositionState) error {
	if err := e.store.Remove(st.local); err != nil {
		return fmt.Errorf("remove local copy: %w", err)
	}
	e.logger.Info("cleanup_done", "file", filepath.Base(st.local))
	return nil
}

// freeName returns dir/name, or a timestamp-suffixed variant when dir/name is
// taken. Existing files are never overwritten.
func (e *DispositionExecutor) freeName(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if !e.exists(candidate) {
		return candidate, nil
	}
	candidate = filepath.Join(dir, timestampedName(name, e.clock.Now()))
	if !e.exists(candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("target %s already exists", candidate)
}

func (e *DispositionExecutor) exists(path string) bool {
	_, err := e.store.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

func timestampedName(name string, now time.Time) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", stem, now.Unix(), ext)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
