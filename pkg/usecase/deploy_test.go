package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
	"github.com/m-mizutani/relkeep/pkg/usecase"
)

func deployRequest() *model.DeployRequest {
	return &model.DeployRequest{
		Owner:       "owner",
		Repo:        "repo",
		Previous:    "abc123",
		Current:     "def456",
		Action:      "deployed",
		Environment: "production",
	}
}

func TestDeployUseCase_LabelDeploy_Success(t *testing.T) {
	source := &MockSourceHost{
		commits: []*model.Commit{
			{SHA: "a", Message: "TX-1 add feature"},
			{SHA: "b", Message: "TX-1 follow up, APP-2"},
			{SHA: "c", Message: ""},
		},
	}
	tracker := &MockTracker{}

	report, err := usecase.NewDeploy(source, tracker).LabelDeploy(context.Background(), deployRequest())
	gt.NoError(t, err)

	gt.Equal(t, source.diffCalls, []MockDiffCall{
		{Owner: "owner", Repo: "repo", From: "abc123", To: "def456"},
	})
	gt.Equal(t, len(tracker.labelCalls), 2)
	for _, call := range tracker.labelCalls {
		gt.Equal(t, call.Action, "deployed")
		gt.Equal(t, call.Environment, "production")
	}

	gt.Equal(t, report.Workflow, model.WorkflowDeploy)
	gt.Equal(t, report.IssueKeys, []model.IssueKey{"TX-1", "APP-2"})
	gt.Equal(t, len(report.Outcomes), 2)
	gt.Equal(t, len(report.Failures()), 0)

	// Deploy never touches versions
	gt.Equal(t, len(tracker.versionCalls), 0)
	gt.Equal(t, len(tracker.attachCalls), 0)
}

func TestDeployUseCase_LabelDeploy_NoCommits(t *testing.T) {
	tracker := &MockTracker{}

	report, err := usecase.NewDeploy(&MockSourceHost{}, tracker).LabelDeploy(context.Background(), deployRequest())
	gt.NoError(t, err)
	gt.Equal(t, report.Commits, 0)
	gt.Equal(t, len(tracker.labelCalls), 0)
}

func TestDeployUseCase_LabelDeploy_PartialFailure(t *testing.T) {
	source := &MockSourceHost{
		commits: []*model.Commit{{SHA: "a", Message: "TX-1 TX-2 TX-3"}},
	}
	tracker := &MockTracker{
		failIssues: map[model.IssueKey]bool{"TX-2": true},
	}

	report, err := usecase.NewDeploy(source, tracker).LabelDeploy(context.Background(), deployRequest())
	gt.NoError(t, err)
	gt.Equal(t, len(tracker.labelCalls), 3)

	failures := report.Failures()
	gt.Equal(t, len(failures), 1)
	gt.Equal(t, failures[0].Target, "TX-2")
	gt.Equal(t, failures[0].Operation, model.OperationLabelIssue)
}

func TestDeployUseCase_LabelDeploy_DryRun(t *testing.T) {
	source := &MockSourceHost{
		commits: []*model.Commit{{SHA: "a", Message: "TX-1"}},
	}
	tracker := &MockTracker{}
	notifier := &MockNotifier{err: errors.New("slack is down")}

	report, err := usecase.NewDeploy(source, tracker,
		usecase.WithDryRun(true),
		usecase.WithNotifier(notifier),
	).LabelDeploy(context.Background(), deployRequest())

	// notification failure does not fail the workflow
	gt.NoError(t, err)
	gt.Equal(t, len(tracker.labelCalls), 0)
	gt.Equal(t, len(report.Outcomes), 1)
	gt.True(t, report.Outcomes[0].Skipped)
	gt.Equal(t, len(notifier.Reports()), 1)
}

func TestDeployUseCase_LabelDeploy_Errors(t *testing.T) {
	t.Run("missing environment", func(t *testing.T) {
		req := deployRequest()
		req.Environment = ""
		source := &MockSourceHost{}

		_, err := usecase.NewDeploy(source, &MockTracker{}).LabelDeploy(context.Background(), req)
		gt.Error(t, err)
		gt.Equal(t, len(source.diffCalls), 0)
	})

	t.Run("diff failure", func(t *testing.T) {
		source := &MockSourceHost{diffErr: types.ErrRemoteFailure}

		_, err := usecase.NewDeploy(source, &MockTracker{}).LabelDeploy(context.Background(), deployRequest())
		gt.True(t, errors.Is(err, types.ErrRemoteFailure))
	})
}
