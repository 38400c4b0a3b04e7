package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/interfaces"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/utils/async"
)

type deployUseCase struct {
	source  interfaces.SourceHost
	tracker interfaces.Tracker
	cfg     *config
}

// NewDeploy creates a new instance of DeployUseCase
func NewDeploy(source interfaces.SourceHost, tracker interfaces.Tracker, opts ...Option) interfaces.DeployUseCase {
	return &deployUseCase{
		source:  source,
		tracker: tracker,
		cfg:     newConfig(opts),
	}
}

// LabelDeploy labels every issue referenced between req.Previous and req.Current with the
// deploy action and environment
func (uc *deployUseCase) LabelDeploy(ctx context.Context, req *model.DeployRequest) (*model.Report, error) {
	logger := ctxlog.From(ctx).With(
		"owner", req.Owner,
		"repo", req.Repo,
		"previous", req.Previous,
		"current", req.Current,
	)
	ctx = ctxlog.With(ctx, logger)

	if req.Action == "" || req.Environment == "" {
		return nil, goerr.New("deploy action and environment are required",
			goerr.V("action", req.Action),
			goerr.V("environment", req.Environment),
		)
	}

	report := model.NewReport(model.WorkflowDeploy, req.Owner, req.Repo)
	report.Previous = req.Previous
	report.Current = req.Current
	report.DryRun = uc.cfg.dryRun

	logger.Info("Processing deploy",
		"run_id", report.RunID,
		"action", req.Action,
		"environment", req.Environment,
	)

	commits, err := uc.source.DiffCommits(ctx, req.Owner, req.Repo, req.Previous, req.Current)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to diff commits")
	}
	report.Commits = len(commits)

	if len(commits) == 0 {
		logger.Info("No commits found")
		return uc.cfg.finish(ctx, report), nil
	}

	issueKeys := model.ExtractIssueKeysFromCommits(commits)
	report.IssueKeys = issueKeys
	report.ProjectKeys = append(report.ProjectKeys, model.UniqueProjectKeys(issueKeys)...)

	logger.Info("Collected issues for deploy", "commits", len(commits), "issues", issueKeys)

	if uc.cfg.dryRun {
		for _, key := range issueKeys {
			report.RecordSkipped(model.OperationLabelIssue, string(key))
		}
		return uc.cfg.finish(ctx, report), nil
	}

	labeled := async.FanOut(ctx, issueKeys, uc.cfg.fanOutLimit, func(ctx context.Context, key model.IssueKey) error {
		return uc.tracker.LabelIssue(ctx, key, req.Action, req.Environment)
	})
	recordResults(ctx, report, model.OperationLabelIssue, labeled)

	return uc.cfg.finish(ctx, report), nil
}
