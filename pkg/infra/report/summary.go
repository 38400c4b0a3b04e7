package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
)

// Print writes a human readable summary of report to w
func Print(w io.Writer, report *model.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	title := fmt.Sprintf("%s %s/%s", report.Workflow, report.Owner, report.Repo)
	if report.DryRun {
		title += " " + yellow("(dry run)")
	}
	fmt.Fprintln(w, bold(title))

	if report.Tag != "" {
		fmt.Fprintf(w, "  tag:      %s\n", report.Tag)
	}
	if report.Previous != "" || report.Current != "" {
		fmt.Fprintf(w, "  range:    %s..%s\n", report.Previous, report.Current)
	}
	fmt.Fprintf(w, "  commits:  %d\n", report.Commits)
	fmt.Fprintf(w, "  issues:   %s\n", joinOrNone(report.IssueKeys))
	fmt.Fprintf(w, "  projects: %s\n", joinOrNone(report.ProjectKeys))

	for _, o := range report.Outcomes {
		switch {
		case o.Skipped:
			fmt.Fprintf(w, "  %s %s %s\n", yellow("-"), o.Operation, o.Target)
		case o.OK:
			fmt.Fprintf(w, "  %s %s %s\n", green("✓"), o.Operation, o.Target)
		default:
			fmt.Fprintf(w, "  %s %s %s %s\n", red("✗"), o.Operation, o.Target, dim(o.Error))
		}
	}

	failures := len(report.Failures())
	if failures > 0 {
		fmt.Fprintln(w, red(fmt.Sprintf("%d of %d operations failed", failures, len(report.Outcomes))))
	} else {
		fmt.Fprintln(w, green(fmt.Sprintf("%d operations succeeded", len(report.Outcomes))))
	}
	fmt.Fprintln(w, dim("run "+report.RunID))
}

func joinOrNone[T ~string](items []T) string {
	if len(items) == 0 {
		return "none"
	}
	s := make([]string, len(items))
	for i, item := range items {
		s[i] = string(item)
	}
	return strings.Join(s, ", ")
}
