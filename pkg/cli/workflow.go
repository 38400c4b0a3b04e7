package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relkeep/pkg/cli/config"
	"github.com/m-mizutani/relkeep/pkg/domain/interfaces"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/usecase"
)

// stdout is replaced in tests
var stdout io.Writer = os.Stdout

// newWorkflowDeps validates every required setting before any client is built, so missing
// configuration fails without network activity
func newWorkflowDeps(githubCfg *config.GitHub, jiraCfg *config.Jira, workflowCfg *config.Workflow) (interfaces.SourceHost, interfaces.Tracker, []usecase.Option, error) {
	if err := githubCfg.Validate(true); err != nil {
		return nil, nil, nil, err
	}
	if err := jiraCfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if err := workflowCfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	source, err := githubCfg.NewClient()
	if err != nil {
		return nil, nil, nil, err
	}
	tracker, err := jiraCfg.NewClient()
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := workflowCfg.Options()
	if err != nil {
		return nil, nil, nil, err
	}

	return source, tracker, opts, nil
}

// finishCommand prints and saves the report. Failed tracker operations are logged but do
// not change the exit status.
func finishCommand(ctx context.Context, workflowCfg *config.Workflow, report *model.Report) error {
	if err := workflowCfg.Output(ctx, stdout, report); err != nil {
		return err
	}

	if failures := report.Failures(); len(failures) > 0 {
		ctxlog.From(ctx).Warn("Some tracker operations failed",
			"run_id", report.RunID,
			"failures", len(failures),
		)
	}
	return nil
}
