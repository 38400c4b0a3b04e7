package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/interfaces"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Notifier posts run reports to a Slack incoming webhook
type Notifier struct {
	webhookURL string
}

var _ interfaces.Notifier = (*Notifier)(nil)

// New creates a Notifier for webhookURL
func New(webhookURL string) (*Notifier, error) {
	if webhookURL == "" {
		return nil, goerr.Wrap(types.ErrMissingConfiguration, "Slack webhook URL is required")
	}
	return &Notifier{webhookURL: webhookURL}, nil
}

// Notify posts a summary of report
func (n *Notifier) Notify(ctx context.Context, report *model.Report) error {
	msg := BuildMessage(report)

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(types.ErrRemoteFailure, "failed to post Slack message",
			goerr.V("run_id", report.RunID),
			goerr.V("cause", err.Error()),
		)
	}

	ctxlog.From(ctx).Debug("Posted report to Slack", "run_id", report.RunID)
	return nil
}

// BuildMessage renders report as a Slack message. Text is the notification fallback.
func BuildMessage(report *model.Report) *slack.WebhookMessage {
	failures := report.Failures()

	var subject string
	switch report.Workflow {
	case model.WorkflowRelease:
		subject = fmt.Sprintf("Release %s of %s/%s", report.Tag, report.Owner, report.Repo)
	default:
		subject = fmt.Sprintf("Deploy %s..%s of %s/%s", report.Previous, report.Current, report.Owner, report.Repo)
	}
	if report.DryRun {
		subject += " (dry run)"
	}

	status := fmt.Sprintf("%d issues, %d operations, %d failed", len(report.IssueKeys), len(report.Outcomes), len(failures))

	body := fmt.Sprintf("*%s*\n%s", subject, status)
	if len(report.IssueKeys) > 0 {
		keys := make([]string, len(report.IssueKeys))
		for i, k := range report.IssueKeys {
			keys[i] = string(k)
		}
		body += "\nIssues: " + strings.Join(keys, ", ")
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, body, false, false), nil, nil),
	}

	if len(failures) > 0 {
		lines := make([]string, 0, len(failures))
		for _, f := range failures {
			lines = append(lines, fmt.Sprintf("• `%s` %s: %s", f.Operation, f.Target, f.Error))
		}
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, strings.Join(lines, "\n"), false, false), nil, nil),
		)
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, "run "+report.RunID, false, false),
	))

	return &slack.WebhookMessage{
		Text:   subject + ": " + status,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
}
