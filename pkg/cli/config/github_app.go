package config

import (
	"log/slog"

	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/infra/ghclient"
	"github.com/urfave/cli/v3"
)

type GitHubApp struct {
	id          types.GitHubAppID
	installID   types.GitHubAppInstallID
	org         string
	privateKey  types.GitHubAppPrivateKey `masq:"secret"`
	ignoreTeams []string
	concurrency int64
}

func (x *GitHubApp) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Category:    "GitHub App",
			Destination: (*int64)(&x.id),
			Sources:     cli.EnvVars("REPOGOV_GITHUB_APP_ID"),
			Required:    true,
		},
		&cli.Int64Flag{
			Name:        "github-app-install-id",
			Usage:       "GitHub App Installation ID for the organization",
			Category:    "GitHub App",
			Destination: (*int64)(&x.installID),
			Sources:     cli.EnvVars("REPOGOV_GITHUB_APP_INSTALL_ID"),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "github-org",
			Usage:       "GitHub organization to scan",
			Category:    "GitHub App",
			Destination: &x.org,
			Sources:     cli.EnvVars("REPOGOV_GITHUB_ORG"),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App Private Key",
			Category:    "GitHub App",
			Destination: (*string)(&x.privateKey),
			Sources:     cli.EnvVars("REPOGOV_GITHUB_APP_PRIVATE_KEY"),
			Required:    true,
		},
		&cli.StringSliceFlag{
			Name:        "github-ignore-team",
			Usage:       "Team name excluded from ownership classification (repeatable)",
			Category:    "GitHub App",
			Destination: &x.ignoreTeams,
			Sources:     cli.EnvVars("REPOGOV_GITHUB_IGNORE_TEAMS"),
		},
		&cli.Int64Flag{
			Name:        "github-concurrency",
			Usage:       "Concurrent repository detail fetches",
			Category:    "GitHub App",
			Destination: &x.concurrency,
			Sources:     cli.EnvVars("REPOGOV_GITHUB_CONCURRENCY"),
			Value:       8,
		},
	}
}

func (x GitHubApp) New(cache interfaces.Cache) (*ghclient.Client, error) {
	return ghclient.New(x.org, x.id, x.installID, x.privateKey,
		ghclient.WithCache(cache),
		ghclient.WithConcurrency(int(x.concurrency)),
		ghclient.WithIgnoreTeams(x.ignoreTeams),
	)
}

func (x GitHubApp) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("ID", int64(x.id)),
		slog.Int64("InstallID", int64(x.installID)),
		slog.String("Org", x.org),
		slog.Int("privateKey.len", len(x.privateKey)),
		slog.Any("IgnoreTeams", x.ignoreTeams),
		slog.Int64("Concurrency", x.concurrency),
	)
}
