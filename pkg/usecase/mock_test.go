package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/relkeep/pkg/domain/model"
)

// MockSourceHost is a mock implementation of interfaces.SourceHost
type MockSourceHost struct {
	tags         []*model.Tag
	commits      []*model.Commit
	diffErr      error
	diffCalls    []MockDiffCall
	findCalls    int
	firstPatches []bool
}

type MockDiffCall struct {
	Owner string
	Repo  string
	From  string
	To    string
}

func (m *MockSourceHost) ListRecentTags(ctx context.Context, owner, repo string) ([]*model.Tag, error) {
	return m.tags, nil
}

func (m *MockSourceHost) FindPreviousDatedTag(ctx context.Context, owner, repo string, current model.VersionTag, requireFirstPatch bool) (*model.Tag, error) {
	m.findCalls++
	m.firstPatches = append(m.firstPatches, requireFirstPatch)
	return model.FindPreviousDatedTag(m.tags, current, requireFirstPatch)
}

func (m *MockSourceHost) DiffCommits(ctx context.Context, owner, repo, from, to string) ([]*model.Commit, error) {
	m.diffCalls = append(m.diffCalls, MockDiffCall{Owner: owner, Repo: repo, From: from, To: to})
	if m.diffErr != nil {
		return nil, m.diffErr
	}
	return m.commits, nil
}

// MockTracker is a mock implementation of interfaces.Tracker safe for concurrent use
type MockTracker struct {
	mu sync.Mutex

	failProjects map[model.ProjectKey]bool
	failIssues   map[model.IssueKey]bool

	projectCalls []model.ProjectKey
	versionCalls []MockVersionCall
	attachCalls  []MockAttachCall
	labelCalls   []MockLabelCall
}

type MockVersionCall struct {
	Project     model.ProjectKey
	Name        model.VersionTag
	ReleaseDate string
}

type MockAttachCall struct {
	Issue   model.IssueKey
	Version model.VersionTag
}

type MockLabelCall struct {
	Issue       model.IssueKey
	Action      string
	Environment string
}

func (m *MockTracker) GetProject(ctx context.Context, key model.ProjectKey) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectCalls = append(m.projectCalls, key)
	if m.failProjects[key] {
		return nil, errors.New("project not found")
	}
	return &model.Project{ID: "10000", Key: key}, nil
}

func (m *MockTracker) CreateReleaseVersion(ctx context.Context, key model.ProjectKey, name model.VersionTag, releaseDate string) (*model.ReleaseVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versionCalls = append(m.versionCalls, MockVersionCall{Project: key, Name: name, ReleaseDate: releaseDate})
	return &model.ReleaseVersion{ID: "1", Name: name, ProjectKey: key}, nil
}

func (m *MockTracker) AttachIssueToVersion(ctx context.Context, issueKey model.IssueKey, versionName model.VersionTag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachCalls = append(m.attachCalls, MockAttachCall{Issue: issueKey, Version: versionName})
	if m.failIssues[issueKey] {
		return errors.New("issue does not exist")
	}
	return nil
}

func (m *MockTracker) LabelIssue(ctx context.Context, issueKey model.IssueKey, action, environment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labelCalls = append(m.labelCalls, MockLabelCall{Issue: issueKey, Action: action, Environment: environment})
	if m.failIssues[issueKey] {
		return errors.New("issue does not exist")
	}
	return nil
}

// MockNotifier records notified reports
type MockNotifier struct {
	mu      sync.Mutex
	reports []*model.Report
	err     error
}

func (m *MockNotifier) Notify(ctx context.Context, report *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return m.err
}

func (m *MockNotifier) Reports() []*model.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Report(nil), m.reports...)
}
