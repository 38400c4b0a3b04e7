package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/interfaces"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/utils/async"
)

type releaseUseCase struct {
	source  interfaces.SourceHost
	tracker interfaces.Tracker
	cfg     *config
}

// NewRelease creates a new instance of ReleaseUseCase
func NewRelease(source interfaces.SourceHost, tracker interfaces.Tracker, opts ...Option) interfaces.ReleaseUseCase {
	return &releaseUseCase{
		source:  source,
		tracker: tracker,
		cfg:     newConfig(opts),
	}
}

// CreateRelease resolves the previous dated tag, collects the issues referenced by commits
// in between, creates one Jira version per project and attaches every issue to it.
// Per-item tracker failures are recorded in the report and do not fail the run.
func (uc *releaseUseCase) CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Report, error) {
	logger := ctxlog.From(ctx).With("owner", req.Owner, "repo", req.Repo, "tag", req.Tag)
	ctx = ctxlog.With(ctx, logger)

	releaseDate, err := req.Tag.ReleaseTimestamp(req.Hour)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid release tag")
	}

	report := model.NewReport(model.WorkflowRelease, req.Owner, req.Repo)
	report.Tag = req.Tag
	report.DryRun = uc.cfg.dryRun

	logger.Info("Processing release", "run_id", report.RunID, "release_date", releaseDate)

	prev, err := uc.source.FindPreviousDatedTag(ctx, req.Owner, req.Repo, req.Tag, req.FirstPatchOnly)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find previous dated tag")
	}
	report.Previous = string(prev.Name)
	report.Current = string(req.Tag)

	commits, err := uc.source.DiffCommits(ctx, req.Owner, req.Repo, string(prev.Name), string(req.Tag))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to diff commits", goerr.V("previous", prev.Name))
	}
	report.Commits = len(commits)

	if len(commits) == 0 {
		logger.Info("No commits found", "previous", prev.Name)
		return uc.cfg.finish(ctx, report), nil
	}

	for _, c := range commits {
		logger.Debug("Commit in release", "sha", c.SHA, "message", c.Message)
	}

	issueKeys := model.ExtractIssueKeysFromCommits(commits)
	projectKeys := model.UniqueProjectKeys(issueKeys)
	report.IssueKeys = issueKeys
	report.ProjectKeys = append(report.ProjectKeys, projectKeys...)

	logger.Info("Collected issues for release",
		"previous", prev.Name,
		"commits", len(commits),
		"issues", issueKeys,
		"projects", projectKeys,
	)

	if len(issueKeys) == 0 {
		return uc.cfg.finish(ctx, report), nil
	}

	// Resolve each project once before creating versions in parallel
	resolved := async.FanOut(ctx, projectKeys, uc.cfg.fanOutLimit, func(ctx context.Context, key model.ProjectKey) error {
		_, err := uc.tracker.GetProject(ctx, key)
		return err
	})
	recordResults(ctx, report, model.OperationResolveProject, resolved)

	var available []model.ProjectKey
	for _, r := range resolved {
		if r.Err == nil {
			available = append(available, r.Item)
		}
	}

	if uc.cfg.dryRun {
		for _, key := range available {
			report.RecordSkipped(model.OperationCreateVersion, string(key))
		}
		for _, key := range issueKeys {
			report.RecordSkipped(model.OperationAttachIssue, string(key))
		}
		return uc.cfg.finish(ctx, report), nil
	}

	created := async.FanOut(ctx, available, uc.cfg.fanOutLimit, func(ctx context.Context, key model.ProjectKey) error {
		_, err := uc.tracker.CreateReleaseVersion(ctx, key, req.Tag, releaseDate)
		return err
	})
	recordResults(ctx, report, model.OperationCreateVersion, created)

	attached := async.FanOut(ctx, issueKeys, uc.cfg.fanOutLimit, func(ctx context.Context, key model.IssueKey) error {
		return uc.tracker.AttachIssueToVersion(ctx, key, req.Tag)
	})
	recordResults(ctx, report, model.OperationAttachIssue, attached)

	return uc.cfg.finish(ctx, report), nil
}
