package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relkeep/pkg/domain/interfaces"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/utils/async"
	"github.com/m-mizutani/relkeep/pkg/utils/errutil"
)

// config holds options shared by the workflows
type config struct {
	notifier    interfaces.Notifier
	dryRun      bool
	fanOutLimit int
}

// Option is a functional option for workflow use cases
type Option func(*config)

// WithNotifier publishes every finished report
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(c *config) {
		c.notifier = notifier
	}
}

// WithDryRun computes the work to do without calling mutating tracker operations
func WithDryRun(dryRun bool) Option {
	return func(c *config) {
		c.dryRun = dryRun
	}
}

// WithFanOutLimit bounds concurrent tracker requests
func WithFanOutLimit(limit int) Option {
	return func(c *config) {
		c.fanOutLimit = limit
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		fanOutLimit: async.DefaultFanOutLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// finish stamps the report and publishes it. Notification failures are logged only.
func (c *config) finish(ctx context.Context, report *model.Report) *model.Report {
	report.Finish()

	ctxlog.From(ctx).Info("Workflow finished",
		"run_id", report.RunID,
		"workflow", report.Workflow,
		"issues", len(report.IssueKeys),
		"operations", len(report.Outcomes),
		"failures", len(report.Failures()),
	)

	if c.notifier != nil {
		if err := c.notifier.Notify(ctx, report); err != nil {
			errutil.Handle(ctx, "failed to notify report", err)
		}
	}

	return report
}

// recordResults copies fan-out results into the report in item order
func recordResults[T ~string](ctx context.Context, report *model.Report, op model.Operation, results []async.Result[T]) {
	logger := ctxlog.From(ctx)
	for _, r := range results {
		if r.Err != nil {
			logger.Error("Tracker operation failed",
				"operation", op,
				"target", r.Item,
				"error", r.Err,
			)
		}
		report.Record(op, string(r.Item), r.Err)
	}
}
