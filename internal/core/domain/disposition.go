package domain

import "time"

type DispositionStep string

const (
	StepRename      DispositionStep = "rename"
	StepMaterialize DispositionStep = "materialize_destination"
	StepCopy        DispositionStep = "copy"
	StepTag         DispositionStep = "tag"
	StepCleanup     DispositionStep = "cleanup"
)

type DispositionStatus string

const (
	DispositionOrganized     DispositionStatus = "organized"
	DispositionLocalLeftover DispositionStatus = "organized_local_leftover"
	DispositionFailed        DispositionStatus = "failed"
)

type DispositionResult struct {
	Status          DispositionStatus `json:"status"`
	FailedStep      DispositionStep   `json:"failed_step,omitempty"`
	LocalPath       string            `json:"local_path"`
	DestinationPath string            `json:"destination_path,omitempty"`
	AlreadyNamed    bool              `json:"already_named"`
	Tagged          bool              `json:"tagged"`
	Err             error             `json:"-"`
}

func (r DispositionResult) Succeeded() bool {
	return r.Status == DispositionOrganized || r.Status == DispositionLocalLeftover
}

type OutcomeStatus string

const (
	OutcomeSkipped       OutcomeStatus = "skipped"
	OutcomeUnreadable    OutcomeStatus = "unreadable"
	OutcomeDryRun        OutcomeStatus = "dry_run"
	OutcomeOrganized     OutcomeStatus = "organized"
	OutcomeLocalLeftover OutcomeStatus = "organized_local_leftover"
	OutcomeFailed        OutcomeStatus = "failed"
)

type SkipReason string

const (
	SkipMissing          SkipReason = "missing"
	SkipDirectory        SkipReason = "directory"
	SkipIgnoredExtension SkipReason = "ignored_extension"
	SkipIgnoredPrefix    SkipReason = "ignored_prefix"
	SkipIgnoredDirectory SkipReason = "ignored_directory"
	SkipAlreadyOrganized SkipReason = "already_organized"
)

// FileOutcome is the terminal state of one orchestrated file.
type FileOutcome struct {
	RunID       string             `json:"run_id"`
	Path        string             `json:"path"`
	Status      OutcomeStatus      `json:"status"`
	SkipReason  SkipReason         `json:"skip_reason,omitempty"`
	Kind        ContentKind        `json:"kind"`
	Category    string             `json:"category,omitempty"`
	NewName     string             `json:"new_name,omitempty"`
	Destination string             `json:"destination,omitempty"`
	Fallback    bool               `json:"fallback"`
	TopDomain   string             `json:"top_domain,omitempty"`
	Disposition *DispositionResult `json:"disposition,omitempty"`
	Err         error              `json:"-"`
}

func (o FileOutcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// JournalEntry is a persisted FileOutcome.
type JournalEntry struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	SourcePath  string    `json:"source_path"`
	Status      string    `json:"status"`
	Category    string    `json:"category,omitempty"`
	NewName     string    `json:"new_name,omitempty"`
	Destination string    `json:"destination,omitempty"`
	FailedStep  string    `json:"failed_step,omitempty"`
	Error       string    `json:"error,omitempty"`
	DryRun      bool      `json:"dry_run"`
	CreatedAt   time.Time `json:"created_at"`
}
