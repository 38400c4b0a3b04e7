package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
	"github.com/m-mizutani/relkeep/pkg/infra/jira"
	"github.com/urfave/cli/v3"
)

// Jira holds Jira Cloud configuration
type Jira struct {
	BaseURL  string
	Username string
	Token    string `masq:"secret"`
}

// Flags returns CLI flags for Jira configuration
func (c *Jira) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jira-base-url",
			Usage:       "Jira host or URL, e.g. example.atlassian.net",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("RELKEEP_JIRA_BASE_URL", "JIRA_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "jira-username",
			Usage:       "Jira account email",
			Destination: &c.Username,
			Sources:     cli.EnvVars("RELKEEP_JIRA_USERNAME", "JIRA_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "jira-token",
			Usage:       "Jira API token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("RELKEEP_JIRA_ACCESS_TOKEN", "JIRA_ACCESS_TOKEN"),
		},
	}
}

// Validate checks that all values are present
func (c *Jira) Validate() error {
	switch {
	case c.BaseURL == "":
		return goerr.Wrap(types.ErrMissingConfiguration, "Jira base URL is required (--jira-base-url or JIRA_BASE_URL)")
	case c.Username == "":
		return goerr.Wrap(types.ErrMissingConfiguration, "Jira username is required (--jira-username or JIRA_USERNAME)")
	case c.Token == "":
		return goerr.Wrap(types.ErrMissingConfiguration, "Jira token is required (--jira-token or JIRA_ACCESS_TOKEN)")
	}
	return nil
}

// NewClient builds a Jira client
func (c *Jira) NewClient() (*jira.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return jira.NewClient(c.BaseURL, c.Username, c.Token)
}
