package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/cli/config"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdDeploy() *cli.Command {
	var (
		githubCfg   config.GitHub
		jiraCfg     config.Jira
		workflowCfg config.Workflow

		req model.DeployRequest
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Aliases:     []string{"R"},
			Usage:       "Repository name",
			Required:    true,
			Destination: &req.Repo,
		},
		&cli.StringFlag{
			Name:        "previous",
			Aliases:     []string{"P"},
			Usage:       "Previously deployed commit or tag",
			Required:    true,
			Destination: &req.Previous,
		},
		&cli.StringFlag{
			Name:        "current",
			Aliases:     []string{"C"},
			Usage:       "Commit or tag being deployed",
			Required:    true,
			Destination: &req.Current,
		},
		&cli.StringFlag{
			Name:        "type",
			Usage:       "Deploy action, e.g. deployed",
			Required:    true,
			Destination: &req.Action,
		},
		&cli.StringFlag{
			Name:        "environment",
			Aliases:     []string{"E"},
			Usage:       "Target environment, e.g. production",
			Required:    true,
			Destination: &req.Environment,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, jiraCfg.Flags()...)
	flags = append(flags, workflowCfg.Flags()...)

	return &cli.Command{
		Name:    "deploy",
		Aliases: []string{"d"},
		Usage:   "Label the issues shipped between two commits with the deploy action and environment",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			source, tracker, opts, err := newWorkflowDeps(&githubCfg, &jiraCfg, &workflowCfg)
			if err != nil {
				return err
			}

			req.Owner = githubCfg.Owner
			report, err := usecase.NewDeploy(source, tracker, opts...).LabelDeploy(ctx, &req)
			if err != nil {
				return goerr.Wrap(err, "deploy workflow failed")
			}

			return finishCommand(ctx, &workflowCfg, report)
		},
	}
}
