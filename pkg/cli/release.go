package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/cli/config"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// defaultReleaseHour is the local hour of day recorded as a version's release date
const defaultReleaseHour = 12

func cmdRelease() *cli.Command {
	var (
		githubCfg   config.GitHub
		jiraCfg     config.Jira
		workflowCfg config.Workflow

		repo       string
		tag        string
		hour       int
		firstPatch bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Aliases:     []string{"R"},
			Usage:       "Repository name",
			Required:    true,
			Destination: &repo,
		},
		&cli.StringFlag{
			Name:        "tag",
			Aliases:     []string{"T"},
			Usage:       "Version tag, vYYYY.MM.DD.N",
			Required:    true,
			Destination: &tag,
		},
		&cli.IntFlag{
			Name:        "hour",
			Usage:       "Local hour of day used as the release date",
			Value:       defaultReleaseHour,
			Destination: &hour,
			Sources:     cli.EnvVars("RELKEEP_RELEASE_HOUR"),
		},
		&cli.BoolFlag{
			Name:        "first-patch",
			Usage:       "Compare against the first tag of the previous release day only",
			Destination: &firstPatch,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, jiraCfg.Flags()...)
	flags = append(flags, workflowCfg.Flags()...)

	return &cli.Command{
		Name:    "release",
		Aliases: []string{"r"},
		Usage:   "Create Jira versions for a tag and attach the issues released with it",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			req := &model.ReleaseRequest{
				Owner:          githubCfg.Owner,
				Repo:           repo,
				Tag:            model.VersionTag(tag),
				Hour:           hour,
				FirstPatchOnly: firstPatch,
			}
			if err := validateHour(hour); err != nil {
				return err
			}
			if _, err := req.Tag.Parse(); err != nil {
				return err
			}

			source, tracker, opts, err := newWorkflowDeps(&githubCfg, &jiraCfg, &workflowCfg)
			if err != nil {
				return err
			}

			report, err := usecase.NewRelease(source, tracker, opts...).CreateRelease(ctx, req)
			if err != nil {
				return goerr.Wrap(err, "release workflow failed")
			}

			return finishCommand(ctx, &workflowCfg, report)
		},
	}
}

func validateHour(hour int) error {
	if hour < 0 || hour > 23 {
		return goerr.New("hour must be between 0 and 23", goerr.V("hour", hour))
	}
	return nil
}

