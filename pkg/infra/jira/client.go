package jira

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/interfaces"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
	"golang.org/x/sync/singleflight"
)

// Client implements interfaces.Tracker for Jira. Projects are looked up at most once per
// key for the lifetime of the client.
type Client struct {
	jiraClient *gojira.Client
	baseURL    string

	projectsMu sync.Mutex
	projects   map[model.ProjectKey]*model.Project
	lookups    singleflight.Group
}

var _ interfaces.Tracker = (*Client)(nil)

// NormalizeBaseURL prepends https:// when baseURL has no scheme and drops trailing slashes
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL != "" && !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	return baseURL
}

// NewClient creates a Jira client authenticated with username and API token
func NewClient(baseURL, username, token string) (*Client, error) {
	if baseURL == "" || username == "" || token == "" {
		return nil, goerr.Wrap(types.ErrMissingConfiguration, "Jira base URL, username and token are required")
	}

	baseURL = NormalizeBaseURL(baseURL)
	if _, err := url.Parse(baseURL); err != nil {
		return nil, goerr.Wrap(err, "invalid Jira base URL", goerr.V("base_url", baseURL))
	}

	tp := gojira.BasicAuthTransport{
		Username: username,
		Password: token,
	}

	jiraClient, err := gojira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Jira client", goerr.V("base_url", baseURL))
	}

	return &Client{
		jiraClient: jiraClient,
		baseURL:    baseURL,
		projects:   make(map[model.ProjectKey]*model.Project),
	}, nil
}

// remoteError converts a go-jira failure into a types.ErrRemoteFailure
func remoteError(err error, resp *gojira.Response, msg string, values ...goerr.Option) error {
	opts := append([]goerr.Option{goerr.V("cause", err.Error())}, values...)
	if resp != nil && resp.Response != nil {
		opts = append(opts, goerr.V("status", resp.StatusCode))
	}
	return goerr.Wrap(types.ErrRemoteFailure, msg, opts...)
}

// BrowseURL returns the release page of a project
func (c *Client) BrowseURL(key model.ProjectKey) string {
	return fmt.Sprintf("%s/projects/%s?selectedItem=com.atlassian.jira.jira-projects-plugin%%3Arelease-page", c.baseURL, url.PathEscape(string(key)))
}

func (c *Client) cachedProject(key model.ProjectKey) *model.Project {
	c.projectsMu.Lock()
	defer c.projectsMu.Unlock()
	return c.projects[key]
}

// GetProject looks up a project. Concurrent lookups of the same key share one request.
func (c *Client) GetProject(ctx context.Context, key model.ProjectKey) (*model.Project, error) {
	if project := c.cachedProject(key); project != nil {
		return project, nil
	}

	v, err, _ := c.lookups.Do(string(key), func() (any, error) {
		if project := c.cachedProject(key); project != nil {
			return project, nil
		}

		project, err := c.fetchProject(ctx, key)
		if err != nil {
			return nil, err
		}

		c.projectsMu.Lock()
		c.projects[key] = project
		c.projectsMu.Unlock()

		return project, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.Project), nil
}

func (c *Client) fetchProject(ctx context.Context, key model.ProjectKey) (*model.Project, error) {
	ctxlog.From(ctx).Debug("Fetching Jira project", "project", key)

	p, resp, err := c.jiraClient.Project.GetWithContext(ctx, string(key))
	if err != nil {
		return nil, remoteError(err, resp, "failed to get Jira project", goerr.V("project", key))
	}

	project := &model.Project{
		ID:   p.ID,
		Key:  model.ProjectKey(p.Key),
		Name: p.Name,
	}
	for i := range p.Versions {
		project.Versions = append(project.Versions, toReleaseVersion(&p.Versions[i], key))
	}

	return project, nil
}

func toReleaseVersion(v *gojira.Version, key model.ProjectKey) *model.ReleaseVersion {
	rv := &model.ReleaseVersion{
		ID:          v.ID,
		Name:        model.VersionTag(v.Name),
		ProjectKey:  key,
		ProjectID:   v.ProjectID,
		ReleaseDate: v.ReleaseDate,
	}
	if v.Released != nil {
		rv.Released = *v.Released
	}
	if v.Archived != nil {
		rv.Archived = *v.Archived
	}
	return rv
}

// CreateReleaseVersion creates an unreleased, unarchived version. When the project already
// has a version with the same name, that version is returned and nothing is created.
// Concurrent calls for the same project and name share one check-and-create.
func (c *Client) CreateReleaseVersion(ctx context.Context, key model.ProjectKey, name model.VersionTag, releaseDate string) (*model.ReleaseVersion, error) {
	project, err := c.GetProject(ctx, key)
	if err != nil {
		return nil, err
	}

	v, err, _ := c.lookups.Do("version/"+string(key)+"/"+string(name), func() (any, error) {
		return c.createVersionOnce(ctx, project, key, name, releaseDate)
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.ReleaseVersion), nil
}

func (c *Client) createVersionOnce(ctx context.Context, project *model.Project, key model.ProjectKey, name model.VersionTag, releaseDate string) (*model.ReleaseVersion, error) {
	logger := ctxlog.From(ctx)

	c.projectsMu.Lock()
	existing := project.FindVersion(name)
	c.projectsMu.Unlock()
	if existing != nil {
		logger.Info("Jira version already exists", "project", key, "version", name, "id", existing.ID)
		return existing, nil
	}

	projectID, err := strconv.Atoi(project.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "Jira project ID is not numeric", goerr.V("project", key), goerr.V("id", project.ID))
	}

	released, archived := false, false
	created, resp, err := c.jiraClient.Version.CreateWithContext(ctx, &gojira.Version{
		Name:        string(name),
		ProjectID:   projectID,
		ReleaseDate: releaseDate,
		Released:    &released,
		Archived:    &archived,
	})
	if err != nil {
		return nil, remoteError(err, resp, "failed to create Jira version",
			goerr.V("project", key),
			goerr.V("version", name),
		)
	}

	version := toReleaseVersion(created, key)
	if version.Name == "" {
		version.Name = name
	}
	if version.ProjectID == 0 {
		version.ProjectID = projectID
	}

	c.projectsMu.Lock()
	project.Versions = append(project.Versions, version)
	c.projectsMu.Unlock()

	logger.Info("Created Jira version",
		"project", key,
		"version", name,
		"release_date", releaseDate,
		"url", c.BrowseURL(key),
	)

	return version, nil
}

// AttachIssueToVersion adds versionName to the issue's fix versions
func (c *Client) AttachIssueToVersion(ctx context.Context, issueKey model.IssueKey, versionName model.VersionTag) error {
	data := map[string]any{
		"update": map[string]any{
			"fixVersions": []map[string]any{
				{"add": map[string]string{"name": string(versionName)}},
			},
		},
	}

	resp, err := c.jiraClient.Issue.UpdateIssueWithContext(ctx, string(issueKey), data)
	if err != nil {
		return remoteError(err, resp, "failed to add fix version to issue",
			goerr.V("issue", issueKey),
			goerr.V("version", versionName),
		)
	}

	ctxlog.From(ctx).Info("Added issue to version", "issue", issueKey, "version", versionName)
	return nil
}

// DeployLabel builds the label recorded for a deploy, e.g. "deployed-production"
func DeployLabel(action, environment string) string {
	label := strings.ToLower(action + "-" + environment)
	return strings.Join(strings.Fields(label), "_")
}

// LabelIssue adds the deploy label to the issue
func (c *Client) LabelIssue(ctx context.Context, issueKey model.IssueKey, action, environment string) error {
	label := DeployLabel(action, environment)
	data := map[string]any{
		"update": map[string]any{
			"labels": []map[string]string{
				{"add": label},
			},
		},
	}

	resp, err := c.jiraClient.Issue.UpdateIssueWithContext(ctx, string(issueKey), data)
	if err != nil {
		return remoteError(err, resp, "failed to label issue",
			goerr.V("issue", issueKey),
			goerr.V("label", label),
		)
	}

	ctxlog.From(ctx).Info("Labeled issue", "issue", issueKey, "label", label)
	return nil
}
