package slack_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
	"github.com/m-mizutani/relkeep/pkg/infra/slack"
)

func sampleReport() *model.Report {
	r := model.NewReport(model.WorkflowRelease, "owner", "repo")
	r.Tag = "v2020.02.18.1"
	r.IssueKeys = []model.IssueKey{"TX-1", "APP-2"}
	r.Record(model.OperationAttachIssue, "TX-1", nil)
	r.Record(model.OperationAttachIssue, "APP-2", errors.New("issue does not exist"))
	return r
}

func TestBuildMessage(t *testing.T) {
	msg := slack.BuildMessage(sampleReport())

	gt.String(t, msg.Text).Contains("Release v2020.02.18.1 of owner/repo")
	gt.String(t, msg.Text).Contains("2 issues, 2 operations, 1 failed")
	gt.V(t, msg.Blocks).NotNil()
	// summary, divider, failures, context
	gt.Equal(t, len(msg.Blocks.BlockSet), 4)
}

func TestBuildMessage_DeployWithoutFailures(t *testing.T) {
	r := model.NewReport(model.WorkflowDeploy, "owner", "repo")
	r.Previous = "abc"
	r.Current = "def"
	r.DryRun = true

	msg := slack.BuildMessage(r)
	gt.String(t, msg.Text).Contains("Deploy abc..def of owner/repo (dry run)")
	gt.Equal(t, len(msg.Blocks.BlockSet), 2)
}

func TestNotifier_Notify(t *testing.T) {
	bodies := make(chan []byte, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- body
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	n, err := slack.New(ts.URL)
	gt.NoError(t, err)
	gt.NoError(t, n.Notify(context.Background(), sampleReport()))

	var posted map[string]any
	gt.NoError(t, json.Unmarshal(<-bodies, &posted))
	gt.String(t, posted["text"].(string)).Contains("owner/repo")
}

func TestNotifier_Errors(t *testing.T) {
	t.Run("missing URL", func(t *testing.T) {
		_, err := slack.New("")
		gt.True(t, errors.Is(err, types.ErrMissingConfiguration))
	})

	t.Run("webhook rejects message", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("no_service"))
		}))
		defer ts.Close()

		n, err := slack.New(ts.URL)
		gt.NoError(t, err)

		err = n.Notify(context.Background(), sampleReport())
		gt.True(t, errors.Is(err, types.ErrRemoteFailure))
	})
}
