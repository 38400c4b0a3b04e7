package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
	"github.com/m-mizutani/relkeep/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub API configuration
type GitHub struct {
	Token          string `masq:"secret"`
	Owner          string
	BaseURL        string
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	PrivateKeyFile string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("RELKEEP_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-owner",
			Usage:       "Owner (user or organization) of the repository",
			Destination: &c.Owner,
			Sources:     cli.EnvVars("RELKEEP_GITHUB_OWNER", "GITHUB_OWNER"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub Enterprise REST API URL, e.g. https://ghe.example.com/api/v3/",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("RELKEEP_GITHUB_BASE_URL"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID, used instead of a token",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("RELKEEP_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("RELKEEP_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key (PEM)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("RELKEEP_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-private-key-file",
			Usage:       "Path to the GitHub App private key (PEM)",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("RELKEEP_GITHUB_PRIVATE_KEY_FILE"),
		},
	}
}

// Validate checks that credentials are present. requireOwner is set by commands that do
// not receive the owner from a webhook payload.
func (c *GitHub) Validate(requireOwner bool) error {
	if requireOwner && c.Owner == "" {
		return goerr.Wrap(types.ErrMissingConfiguration, "GitHub owner is required (--github-owner or GITHUB_OWNER)")
	}

	if c.AppID != 0 {
		if c.InstallationID == 0 {
			return goerr.Wrap(types.ErrMissingConfiguration, "GitHub App installation ID is required", goerr.V("app_id", c.AppID))
		}
		if c.PrivateKey == "" && c.PrivateKeyFile == "" {
			return goerr.Wrap(types.ErrMissingConfiguration, "GitHub App private key is required", goerr.V("app_id", c.AppID))
		}
		return nil
	}

	if c.Token == "" {
		return goerr.Wrap(types.ErrMissingConfiguration, "GitHub token is required (--github-token or GITHUB_TOKEN)")
	}
	return nil
}

// NewClient builds a GitHub client, preferring App credentials over a token
func (c *GitHub) NewClient() (*github.Client, error) {
	var opts []github.Option

	if c.AppID != 0 {
		key := []byte(c.PrivateKey)
		if len(key) == 0 {
			data, err := os.ReadFile(c.PrivateKeyFile)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to read GitHub App private key", goerr.V("path", c.PrivateKeyFile))
			}
			key = data
		}
		opts = append(opts, github.WithApp(c.AppID, c.InstallationID, key))
	} else {
		opts = append(opts, github.WithToken(c.Token))
	}

	if c.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.BaseURL))
	}

	return github.NewClient(opts...)
}
