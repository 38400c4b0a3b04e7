package config

import (
	"context"
	"io"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/infra/report"
	"github.com/m-mizutani/relkeep/pkg/infra/slack"
	"github.com/m-mizutani/relkeep/pkg/usecase"
	"github.com/m-mizutani/relkeep/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

// Workflow holds options shared by the release and deploy commands
type Workflow struct {
	DryRun          bool
	Concurrency     int
	ReportPath      string
	SlackWebhookURL string `masq:"secret"`
	Quiet           bool
}

// Flags returns CLI flags for workflow configuration
func (c *Workflow) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Collect issues and plan tracker changes without applying them",
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("RELKEEP_DRY_RUN"),
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Maximum number of concurrent Jira requests",
			Value:       async.DefaultFanOutLimit,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("RELKEEP_CONCURRENCY"),
		},
		&cli.StringFlag{
			Name:        "report",
			Usage:       "Write the run report to a .json, .yaml or .toml file",
			Destination: &c.ReportPath,
			Sources:     cli.EnvVars("RELKEEP_REPORT"),
		},
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Post the run report to a Slack incoming webhook",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("RELKEEP_SLACK_WEBHOOK_URL"),
		},
		&cli.BoolFlag{
			Name:        "quiet",
			Aliases:     []string{"q"},
			Usage:       "Do not print the run summary",
			Destination: &c.Quiet,
		},
	}
}

// Validate checks values that would otherwise fail after tracker changes were made
func (c *Workflow) Validate() error {
	if c.Concurrency < 1 {
		return goerr.New("concurrency must be positive", goerr.V("concurrency", c.Concurrency))
	}
	if c.ReportPath != "" {
		if _, err := report.FormatOf(c.ReportPath); err != nil {
			return err
		}
	}
	return nil
}

// Options returns use case options for the configuration
func (c *Workflow) Options() ([]usecase.Option, error) {
	opts := []usecase.Option{
		usecase.WithDryRun(c.DryRun),
		usecase.WithFanOutLimit(c.Concurrency),
	}

	if c.SlackWebhookURL != "" {
		notifier, err := slack.New(c.SlackWebhookURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	return opts, nil
}

// Output prints the summary of r to w and writes the report file when configured
func (c *Workflow) Output(ctx context.Context, w io.Writer, r *model.Report) error {
	if !c.Quiet {
		report.Print(w, r)
	}

	if c.ReportPath != "" {
		if err := report.Write(c.ReportPath, r); err != nil {
			return err
		}
		ctxlog.From(ctx).Info("Report written", "path", c.ReportPath, "run_id", r.RunID)
	}

	return nil
}
