package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/scoring"
)

type fakeExtractor struct {
	byName map[string]domain.Extraction
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (domain.Extraction, error) {
	f.calls++
	if f.err != nil {
		return domain.Extraction{}, f.err
	}
	return f.byName[filepath.Base(path)], nil
}

type fakeDecider struct {
	decision domain.Decision
	calls    int
	scores   domain.DomainScores
}

func (f *fakeDecider) Decide(_ context.Context, _ string, _ domain.Extraction, scores domain.DomainScores) domain.Decision {
	f.calls++
	f.scores = scores
	return f.decision
}

type recordingJournal struct {
	outcomes []domain.FileOutcome
}

func (j *recordingJournal) Record(_ context.Context, outcome domain.FileOutcome) error {
	j.outcomes = append(j.outcomes, outcome)
	return nil
}

func (j *recordingJournal) Recent(context.Context, int) ([]domain.JournalEntry, error) {
	return nil, nil
}

type recordingPublisher struct {
	published []domain.FileOutcome
}

func (p *recordingPublisher) PublishFileOrganized(_ context.Context, outcome domain.FileOutcome) error {
	p.published = append(p.published, outcome)
	return nil
}

type recordingRecorder struct {
	statuses []domain.OutcomeStatus
}

func (r *recordingRecorder) ObserveOutcome(outcome domain.FileOutcome, _ time.Duration) {
	r.statuses = append(r.statuses, outcome.Status)
}

type organizeFixture struct {
	root      string
	inbox     string
	catalog   domain.Catalog
	extractor *fakeExtractor
	decider   *fakeDecider
	store     *osStore
	journal   *recordingJournal
	publisher *recordingPublisher
	recorder  *recordingRecorder
	uc        *OrganizeUseCase
}

func newOrganizeFixture(t *testing.T) *organizeFixture {
	t.Helper()
	root := t.TempDir()
	inbox := filepath.Join(root, "Downloads")
	require.NoError(t, os.MkdirAll(inbox, 0o755))

	f := &organizeFixture{
		root:      root,
		inbox:     inbox,
		catalog:   testCatalog(filepath.Join(root, "Cloud")),
		extractor: &fakeExtractor{byName: map[string]domain.Extraction{}},
		decider:   &fakeDecider{},
		store:     &osStore{},
		journal:   &recordingJournal{},
		publisher: &recordingPublisher{},
		recorder:  &recordingRecorder{},
	}
	disposer := NewDispositionExecutor(f.store, nil, &fakeClock{now: time.Unix(1700000000, 0)}, 0, nil)
	f.uc = NewOrganizeUseCase(
		f.extractor,
		scoring.NewScorer(nil, nil),
		f.decider,
		disposer,
		f.catalog,
		nil,
		WithJournal(f.journal),
		WithPublisher(f.publisher),
		WithRecorder(f.recorder),
	)
	return f
}

func (f *organizeFixture) write(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))
	return path
}

func TestOrganizeScannedPDFGoesToHealth(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, f.inbox, "scan001.pdf")
	f.extractor.byName["scan001.pdf"] = domain.Extraction{Kind: domain.KindPDF, Text: "LAUDO: hemograma do paciente"}
	f.decider.decision = domain.Decision{Category: "pessoal_saude", NewName: "2024-10-01__Lab__Exame"}

	out := f.uc.OrganizeFile(context.Background(), src, false)

	require.Equal(t, domain.OutcomeOrganized, out.Status)
	require.Equal(t, "pessoal_saude", out.Category)
	require.Equal(t, "pessoal_saude", out.TopDomain)
	require.Equal(t, "2024-10-01__Lab__Exame.pdf", out.NewName)
	want := filepath.Join(f.catalog.Categories[1].Path, "2024-10-01__Lab__Exame.pdf")
	require.Equal(t, want, out.Destination)
	require.FileExists(t, want)
	require.NoFileExists(t, src)
	require.Equal(t, "pessoal_saude", f.decider.scores[0].Domain)

	require.Len(t, f.journal.outcomes, 1)
	require.Len(t, f.publisher.published, 1)
	require.Equal(t, []domain.OutcomeStatus{domain.OutcomeOrganized}, f.recorder.statuses)
}

func TestOrganizeInstallerUsesInstallerCategory(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, f.inbox, "invoice.dmg")
	f.extractor.byName["invoice.dmg"] = domain.Extraction{Kind: domain.KindInstaller, Text: "FILE NAME: invoice.dmg"}
	f.decider.decision = domain.Decision{Category: "financeiro_pagamentos", NewName: "invoice.dmg"}

	out := f.uc.OrganizeFile(context.Background(), src, false)

	require.Equal(t, domain.OutcomeOrganized, out.Status)
	require.Equal(t, "softwares", out.Category)
	require.FileExists(t, filepath.Join(f.root, "Cloud", "Softwares", "invoice.dmg"))
}

func TestOrganizeUnknownCategoryGoesToCatchAll(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, f.inbox, "x.txt")
	f.decider.decision = domain.Decision{Category: "astronomy", NewName: "x.txt"}

	out := f.uc.OrganizeFile(context.Background(), src, true)
	require.Equal(t, "outros", out.Category)
}

func TestOrganizeSecondRunIsNoOp(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, f.inbox, "doc.txt")
	f.decider.decision = domain.Decision{Category: "juridico", NewName: "2024-01-01__Tribunal__Intimacao.txt"}

	first := f.uc.OrganizeFile(context.Background(), src, false)
	require.Equal(t, domain.OutcomeOrganized, first.Status)

	second := f.uc.OrganizeFile(context.Background(), first.Destination, false)
	require.Equal(t, domain.OutcomeSkipped, second.Status)
	require.Equal(t, domain.SkipAlreadyOrganized, second.SkipReason)
	require.Equal(t, 1, f.extractor.calls)
	require.Equal(t, 1, f.decider.calls)
	require.FileExists(t, first.Destination)
	require.Len(t, f.journal.outcomes, 1)
}

func TestOrganizeSkipRules(t *testing.T) {
	f := newOrganizeFixture(t)
	cases := map[string]struct {
		path string
		want domain.SkipReason
	}{
		"missing":           {path: filepath.Join(f.inbox, "ghost.pdf"), want: domain.SkipMissing},
		"directory":         {path: f.inbox, want: domain.SkipDirectory},
		"ignored extension": {path: f.write(t, f.inbox, "movie.CRDOWNLOAD"), want: domain.SkipIgnoredExtension},
		"hidden file":       {path: f.write(t, f.inbox, ".DS_Store"), want: domain.SkipIgnoredPrefix},
		"office lock":       {path: f.write(t, f.inbox, "~$report.docx"), want: domain.SkipIgnoredPrefix},
		"ignored directory": {path: f.write(t, filepath.Join(f.inbox, ".git", "objects"), "pack.txt"), want: domain.SkipIgnoredDirectory},
		"category subdir":   {path: f.write(t, filepath.Join(f.root, "Cloud", "Juridico", "2024"), "a.pdf"), want: domain.SkipAlreadyOrganized},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out := f.uc.OrganizeFile(context.Background(), tc.path, false)
			require.Equal(t, domain.OutcomeSkipped, out.Status)
			require.Equal(t, tc.want, out.SkipReason)
		})
	}
	require.Zero(t, f.extractor.calls)
	require.Empty(t, f.journal.outcomes)
}

func TestOrganizeSiblingWithCategoryPrefixIsNotSkipped(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, filepath.Join(f.root, "Cloud", "JuridicoOld"), "a.txt")
	f.decider.decision = domain.Decision{Category: "juridico", NewName: "a.txt"}

	out := f.uc.OrganizeFile(context.Background(), src, true)
	require.Equal(t, domain.OutcomeDryRun, out.Status)
}

func TestOrganizeDryRunDoesNotMutate(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, f.inbox, "scan.pdf")
	f.decider.decision = domain.Decision{Category: "juridico", NewName: "2024-02-02__TJ__Sentenca.pdf"}

	out := f.uc.OrganizeFile(context.Background(), src, true)

	require.Equal(t, domain.OutcomeDryRun, out.Status)
	require.Equal(t, filepath.Join(f.root, "Cloud", "Juridico", "2024-02-02__TJ__Sentenca.pdf"), out.Destination)
	require.FileExists(t, src)
	require.NoDirExists(t, filepath.Join(f.root, "Cloud", "Juridico"))
	require.Nil(t, out.Disposition)
	require.Len(t, f.journal.outcomes, 1)
	require.Empty(t, f.publisher.published)
}

func TestOrganizeUnreadableStopsProcessing(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, f.inbox, "broken.pdf")
	f.extractor.err = domain.WrapError(domain.ErrUnreadable, "pdf", errors.New("malformed xref"))

	out := f.uc.OrganizeFile(context.Background(), src, false)

	require.Equal(t, domain.OutcomeUnreadable, out.Status)
	require.True(t, domain.IsKind(out.Err, domain.ErrUnreadable))
	require.Zero(t, f.decider.calls)
	require.FileExists(t, src)
}

func TestOrganizeDispositionFailureIsReported(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, f.inbox, "scan.pdf")
	f.decider.decision = domain.Decision{Category: "juridico", NewName: "new.pdf"}
	f.store.copyErr = errors.New("disk full")

	out := f.uc.OrganizeFile(context.Background(), src, false)

	require.Equal(t, domain.OutcomeFailed, out.Status)
	require.NotNil(t, out.Disposition)
	require.Equal(t, domain.StepCopy, out.Disposition.FailedStep)
	require.FileExists(t, filepath.Join(f.inbox, "new.pdf"))
	require.Empty(t, f.publisher.published)
}

func TestOrganizeBatchContinuesAfterFailure(t *testing.T) {
	f := newOrganizeFixture(t)
	a := f.write(t, f.inbox, "a.txt")
	b := f.write(t, f.inbox, "b.txt")
	f.decider.decision = domain.Decision{Category: "juridico", NewName: ""}

	outcomes := f.uc.OrganizeBatch(context.Background(), []string{filepath.Join(f.inbox, "missing.txt"), a, b}, true)

	require.Len(t, outcomes, 3)
	require.Equal(t, domain.OutcomeSkipped, outcomes[0].Status)
	require.Equal(t, domain.OutcomeDryRun, outcomes[1].Status)
	require.Equal(t, domain.OutcomeDryRun, outcomes[2].Status)
	require.Equal(t, "a.txt", outcomes[1].NewName)
	require.Equal(t, outcomes[0].RunID, outcomes[2].RunID)
}

func TestOrganizeBatchStopsOnCancel(t *testing.T) {
	f := newOrganizeFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := f.uc.OrganizeBatch(ctx, []string{f.write(t, f.inbox, "a.txt")}, true)
	require.Empty(t, outcomes)
}

func TestInspectReturnsScores(t *testing.T) {
	f := newOrganizeFixture(t)
	src := f.write(t, f.inbox, "a.txt")
	f.extractor.byName["a.txt"] = domain.Extraction{Kind: domain.KindText, Text: "intimação do juiz"}

	extraction, scores, err := f.uc.Inspect(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, domain.KindText, extraction.Kind)
	require.Equal(t, "juridico", scores[0].Domain)
	require.Zero(t, f.decider.calls)

	_, _, err = f.uc.Inspect(context.Background(), f.inbox)
	require.True(t, domain.IsKind(err, domain.ErrInvalidInput))
}

func TestIsWithin(t *testing.T) {
	require.True(t, isWithin("/c/Juridico/a.pdf", "/c/Juridico"))
	require.True(t, isWithin("/c/Juridico/x/a.pdf", "/c/Juridico/"))
	require.False(t, isWithin("/c/JuridicoOld/a.pdf", "/c/Juridico"))
	require.False(t, isWithin("/c/Juridico", "/c/Juridico"))
	require.False(t, isWithin("/d/a.pdf", "/c/Juridico"))
}
