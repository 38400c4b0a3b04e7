package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr          string
	WebhookSecret string `masq:"secret"`
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("RELKEEP_ADDR"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("RELKEEP_GITHUB_WEBHOOK_SECRET"),
		},
	}
}

// Validate checks that a webhook secret is set
func (c *Server) Validate() error {
	if c.WebhookSecret == "" {
		return goerr.Wrap(types.ErrMissingConfiguration, "GitHub webhook secret is required (--github-webhook-secret)")
	}
	return nil
}
