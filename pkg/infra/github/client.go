package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/interfaces"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
)

// recentTagsLimit is the page size of the tag listing query
const recentTagsLimit = 100

// Client implements interfaces.SourceHost on top of the GitHub REST and GraphQL APIs
type Client struct {
	githubClient *github.Client
}

var _ interfaces.SourceHost = (*Client)(nil)

type config struct {
	token          string
	appID          int64
	installationID int64
	privateKey     []byte
	baseURL        string
	httpClient     *http.Client
}

// Option is a functional option for Client
type Option func(*config)

// WithToken authenticates with a personal access token
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithApp authenticates as a GitHub App installation
func WithApp(appID, installationID int64, privateKey []byte) Option {
	return func(c *config) {
		c.appID = appID
		c.installationID = installationID
		c.privateKey = privateKey
	}
}

// WithBaseURL overrides the REST API root, e.g. https://ghe.example.com/api/v3/
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the underlying HTTP client. Ignored when App authentication is used.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new GitHub client
func NewClient(opts ...Option) (*Client, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var githubClient *github.Client
	switch {
	case cfg.appID != 0:
		itr, err := ghinstallation.New(http.DefaultTransport, cfg.appID, cfg.installationID, cfg.privateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App transport",
				goerr.V("app_id", cfg.appID),
				goerr.V("installation_id", cfg.installationID),
			)
		}
		githubClient = github.NewClient(&http.Client{Transport: itr})

	case cfg.token != "":
		githubClient = github.NewClient(cfg.httpClient).WithAuthToken(cfg.token)

	default:
		return nil, goerr.Wrap(types.ErrMissingConfiguration, "GitHub token or App credentials are required")
	}

	if cfg.baseURL != "" {
		baseURL := cfg.baseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub base URL", goerr.V("base_url", cfg.baseURL))
		}
		githubClient.BaseURL = u
	}

	return &Client{
		githubClient: githubClient,
	}, nil
}

const recentTagsQuery = `query($owner: String!, $name: String!, $first: Int!) {
  repository(owner: $owner, name: $name) {
    refs(refPrefix: "refs/tags/", first: $first, orderBy: {field: TAG_COMMIT_DATE, direction: DESC}) {
      nodes {
        name
        target {
          ... on Commit {
            oid
            committedDate
          }
          ... on Tag {
            target {
              ... on Commit {
                oid
                committedDate
              }
            }
          }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type commitTarget struct {
	Oid           string     `json:"oid"`
	CommittedDate *time.Time `json:"committedDate"`
}

type recentTagsResponse struct {
	Data struct {
		Repository *struct {
			Refs struct {
				Nodes []struct {
					Name   string `json:"name"`
					Target struct {
						commitTarget
						// annotated tags point to a Tag object that points to the commit
						Target *commitTarget `json:"target"`
					} `json:"target"`
				} `json:"nodes"`
			} `json:"refs"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// graphqlPath resolves the GraphQL endpoint against the REST base URL. GitHub Enterprise
// serves REST under /api/v3/ and GraphQL under /api/graphql.
func (c *Client) graphqlPath() string {
	if strings.HasSuffix(c.githubClient.BaseURL.Path, "/api/v3/") {
		return "../graphql"
	}
	return "graphql"
}

// ListRecentTags returns up to 100 tags ordered by commit date, newest first
func (c *Client) ListRecentTags(ctx context.Context, owner, repo string) ([]*model.Tag, error) {
	logger := ctxlog.From(ctx)

	req, err := c.githubClient.NewRequest(http.MethodPost, c.graphqlPath(), &graphqlRequest{
		Query: recentTagsQuery,
		Variables: map[string]any{
			"owner": owner,
			"name":  repo,
			"first": recentTagsLimit,
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build tag listing request")
	}

	var resp recentTagsResponse
	if _, err := c.githubClient.Do(ctx, req, &resp); err != nil {
		return nil, goerr.Wrap(types.ErrRemoteFailure, "failed to list tags",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("cause", err.Error()),
		)
	}

	if len(resp.Errors) > 0 {
		return nil, goerr.Wrap(types.ErrRemoteFailure, "tag listing query returned errors",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("message", resp.Errors[0].Message),
		)
	}
	if resp.Data.Repository == nil {
		return nil, goerr.Wrap(types.ErrRemoteFailure, "repository not found",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
		)
	}

	nodes := resp.Data.Repository.Refs.Nodes
	tags := make([]*model.Tag, 0, len(nodes))
	for _, node := range nodes {
		target := node.Target.commitTarget
		if target.Oid == "" && node.Target.Target != nil {
			target = *node.Target.Target
		}

		tag := &model.Tag{
			Name:     model.VersionTag(node.Name),
			CommitID: target.Oid,
		}
		if target.CommittedDate != nil {
			tag.CommittedAt = *target.CommittedDate
		}
		tags = append(tags, tag)
	}

	logger.Debug("Listed recent tags", "owner", owner, "repo", repo, "count", len(tags))

	return tags, nil
}

// FindPreviousDatedTag returns the first recent tag that current is more recent than.
// Errors wrap types.ErrNotFound when no tag qualifies.
func (c *Client) FindPreviousDatedTag(ctx context.Context, owner, repo string, current model.VersionTag, requireFirstPatch bool) (*model.Tag, error) {
	tags, err := c.ListRecentTags(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	tag, err := model.FindPreviousDatedTag(tags, current, requireFirstPatch)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve previous dated tag",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
		)
	}

	return tag, nil
}

// DiffCommits returns the commits between from and to, following every page of the comparison
func (c *Client) DiffCommits(ctx context.Context, owner, repo, from, to string) ([]*model.Commit, error) {
	var commits []*model.Commit
	opts := &github.ListOptions{PerPage: 100}

	for {
		comparison, resp, err := c.githubClient.Repositories.CompareCommits(ctx, owner, repo, from, to, opts)
		if err != nil {
			return nil, goerr.Wrap(types.ErrRemoteFailure, "failed to compare commits",
				goerr.V("owner", owner),
				goerr.V("repo", repo),
				goerr.V("from", from),
				goerr.V("to", to),
				goerr.V("page", opts.Page),
				goerr.V("cause", err.Error()),
			)
		}

		for _, rc := range comparison.Commits {
			commits = append(commits, &model.Commit{
				SHA:     rc.GetSHA(),
				Message: rc.GetCommit().GetMessage(),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if commits == nil {
		commits = []*model.Commit{}
	}
	return commits, nil
}
