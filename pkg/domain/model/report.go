package model

import (
	"time"

	"github.com/google/uuid"
)

// Workflow names a relkeep workflow
type Workflow string

const (
	WorkflowRelease Workflow = "release"
	WorkflowDeploy  Workflow = "deploy"
)

// Operation names a single tracker operation performed for one item
type Operation string

const (
	OperationResolveProject Operation = "resolve_project"
	OperationCreateVersion  Operation = "create_version"
	OperationAttachIssue    Operation = "attach_issue"
	OperationLabelIssue     Operation = "label_issue"
)

// Outcome is the result of one fan-out item
type Outcome struct {
	Operation Operation `json:"operation" yaml:"operation" toml:"operation"`
	Target    string    `json:"target" yaml:"target" toml:"target"`
	OK        bool      `json:"ok" yaml:"ok" toml:"ok"`
	Skipped   bool      `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// Report collects everything a workflow run did, including per-item failures
type Report struct {
	RunID       string       `json:"run_id" yaml:"run_id" toml:"run_id"`
	Workflow    Workflow     `json:"workflow" yaml:"workflow" toml:"workflow"`
	Owner       string       `json:"owner" yaml:"owner" toml:"owner"`
	Repo        string       `json:"repo" yaml:"repo" toml:"repo"`
	Tag         VersionTag   `json:"tag,omitempty" yaml:"tag,omitempty" toml:"tag,omitempty"`
	Previous    string       `json:"previous,omitempty" yaml:"previous,omitempty" toml:"previous,omitempty"`
	Current     string       `json:"current,omitempty" yaml:"current,omitempty" toml:"current,omitempty"`
	DryRun      bool         `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
	Commits     int          `json:"commits" yaml:"commits" toml:"commits"`
	IssueKeys   []IssueKey   `json:"issue_keys" yaml:"issue_keys" toml:"issue_keys"`
	ProjectKeys []ProjectKey `json:"project_keys" yaml:"project_keys" toml:"project_keys"`
	Outcomes    []*Outcome   `json:"outcomes" yaml:"outcomes" toml:"outcomes"`
	StartedAt   time.Time    `json:"started_at" yaml:"started_at" toml:"started_at"`
	FinishedAt  time.Time    `json:"finished_at" yaml:"finished_at" toml:"finished_at"`
}

// NewReport starts a report for a workflow run
func NewReport(workflow Workflow, owner, repo string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Workflow:    workflow,
		Owner:       owner,
		Repo:        repo,
		IssueKeys:   []IssueKey{},
		ProjectKeys: []ProjectKey{},
		Outcomes:    []*Outcome{},
		StartedAt:   time.Now(),
	}
}

// Record appends the outcome of op on target. A nil err is success.
func (x *Report) Record(op Operation, target string, err error) {
	outcome := &Outcome{
		Operation: op,
		Target:    target,
		OK:        err == nil,
	}
	if err != nil {
		outcome.Error = err.Error()
	}
	x.Outcomes = append(x.Outcomes, outcome)
}

// RecordSkipped appends an operation that was planned but not executed (dry run)
func (x *Report) RecordSkipped(op Operation, target string) {
	x.Outcomes = append(x.Outcomes, &Outcome{
		Operation: op,
		Target:    target,
		OK:        true,
		Skipped:   true,
	})
}

// Failures returns outcomes that did not succeed
func (x *Report) Failures() []*Outcome {
	var failed []*Outcome
	for _, o := range x.Outcomes {
		if !o.OK {
			failed = append(failed, o)
		}
	}
	return failed
}

// Finish stamps the end of the run
func (x *Report) Finish() {
	x.FinishedAt = time.Now()
}
