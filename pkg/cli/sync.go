package cli

import (
	"context"

	"github.com/secmon-lab/repogov/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// syncCommand runs a single ingestion pass and exits, for cron-style
// deployments that do not need the HTTP API.
func syncCommand() *cli.Command {
	var cfg deps

	return &cli.Command{
		Name:  "sync",
		Usage: "Run one repository sync pass and exit",
		Flags: cfg.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting sync", cfg.logAttrs()...)

			uc, err := cfg.buildUseCase(ctx)
			if err != nil {
				return err
			}

			return uc.SyncRepositories(ctx)
		},
	}
}
