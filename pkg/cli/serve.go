package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/cli/config"
	controller "github.com/m-mizutani/relkeep/pkg/controller/http"
	"github.com/m-mizutani/relkeep/pkg/usecase"
	"github.com/m-mizutani/relkeep/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		githubCfg   config.GitHub
		jiraCfg     config.Jira
		sentryCfg   config.Sentry
		workflowCfg config.Workflow
		hour        int
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, jiraCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags,
		&cli.IntFlag{
			Name:        "hour",
			Usage:       "Local hour of day used as the release date",
			Value:       defaultReleaseHour,
			Destination: &hour,
			Sources:     cli.EnvVars("RELKEEP_RELEASE_HOUR"),
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Maximum number of concurrent Jira requests per workflow",
			Value:       async.DefaultFanOutLimit,
			Destination: &workflowCfg.Concurrency,
			Sources:     cli.EnvVars("RELKEEP_CONCURRENCY"),
		},
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Post every run report to a Slack incoming webhook",
			Destination: &workflowCfg.SlackWebhookURL,
			Sources:     cli.EnvVars("RELKEEP_SLACK_WEBHOOK_URL"),
		},
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server that creates Jira versions when version tags are pushed",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := serverCfg.Validate(); err != nil {
				return err
			}
			if err := githubCfg.Validate(false); err != nil {
				return err
			}
			if err := jiraCfg.Validate(); err != nil {
				return err
			}
			if err := workflowCfg.Validate(); err != nil {
				return err
			}
			if err := validateHour(hour); err != nil {
				return err
			}

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			source, err := githubCfg.NewClient()
			if err != nil {
				return err
			}
			tracker, err := jiraCfg.NewClient()
			if err != nil {
				return err
			}
			opts, err := workflowCfg.Options()
			if err != nil {
				return err
			}

			logger.Info("Starting relkeep server",
				slog.String("addr", serverCfg.Addr),
				slog.Int("hour", hour),
				slog.Bool("sentry", sentryCfg.DSN != ""),
			)

			webhookUC := usecase.NewWebhook(usecase.NewRelease(source, tracker, opts...), hour)

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(serverCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-serverErr:
				return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			// release workflows started by webhooks keep running after the response was sent
			if err := async.Wait(shutdownCtx); err != nil {
				logger.Warn("Shutdown before background workflows finished", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
