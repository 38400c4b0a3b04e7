package interfaces

import (
	"context"

	"github.com/m-mizutani/relkeep/pkg/domain/model"
)

// Tracker defines operations for Jira release bookkeeping
type Tracker interface {
	// GetProject looks up a project. Results are cached per process.
	GetProject(ctx context.Context, key model.ProjectKey) (*model.Project, error)

	// CreateReleaseVersion creates an unreleased version in the project
	CreateReleaseVersion(ctx context.Context, key model.ProjectKey, name model.VersionTag, releaseDate string) (*model.ReleaseVersion, error)

	// AttachIssueToVersion adds the version to the issue's fix versions
	AttachIssueToVersion(ctx context.Context, issueKey model.IssueKey, versionName model.VersionTag) error

	// LabelIssue labels the issue with the deploy action and environment
	LabelIssue(ctx context.Context, issueKey model.IssueKey, action, environment string) error
}

// Notifier publishes a finished workflow report
type Notifier interface {
	Notify(ctx context.Context, report *model.Report) error
}
