package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/repogov/pkg/cli/config"
	"github.com/secmon-lab/repogov/pkg/infra"
	"github.com/secmon-lab/repogov/pkg/repository/memory"
	"github.com/secmon-lab/repogov/pkg/usecase"
	"github.com/secmon-lab/repogov/pkg/utils/logging"
	"github.com/urfave/cli/v3"

	_ "github.com/lib/pq"
)

// deps is the configuration shared by the serve and sync commands.
type deps struct {
	githubApp config.GitHubApp
	owners    config.Owners
	postgres  config.Postgres
	firestore config.Firestore
	bigQuery  config.BigQuery
	cache     config.Cache
	sentry    config.Sentry
}

func (x *deps) flags() []cli.Flag {
	return slice.Flatten(
		x.githubApp.Flags(),
		x.owners.Flags(),
		x.postgres.Flags(),
		x.firestore.Flags(),
		x.bigQuery.Flags(),
		x.cache.Flags(),
		x.sentry.Flags(),
	)
}

func (x *deps) logAttrs() []any {
	return []any{
		slog.Any("GitHubApp", x.githubApp),
		slog.Any("Owners", x.owners),
		slog.Any("Postgres", &x.postgres),
		slog.Any("Firestore", &x.firestore),
		slog.Any("BigQuery", &x.bigQuery),
		slog.Any("Cache", &x.cache),
		slog.Any("Sentry", &x.sentry),
	}
}

// buildUseCase wires the configured clients together. Store precedence:
// PostgreSQL, then Firestore, then the in-memory store for local runs.
func (x *deps) buildUseCase(ctx context.Context) (*usecase.UseCase, error) {
	if err := x.sentry.Configure(ctx); err != nil {
		return nil, err
	}

	registry, err := x.owners.Load()
	if err != nil {
		return nil, err
	}

	cacheClient, err := x.cache.NewCache(ctx)
	if err != nil {
		return nil, err
	}

	ghClient, err := x.githubApp.New(cacheClient)
	if err != nil {
		return nil, err
	}

	options := []infra.Option{
		infra.WithGitHub(ghClient),
		infra.WithCache(cacheClient),
	}

	switch {
	case x.postgres.Enabled():
		repo, err := x.postgres.NewRepository(ctx)
		if err != nil {
			return nil, err
		}
		options = append(options, infra.WithAssetRepository(repo))
	case x.firestore.Enabled():
		repo, err := x.firestore.NewRepository(ctx)
		if err != nil {
			return nil, err
		}
		options = append(options, infra.WithAssetRepository(repo))
	default:
		logging.From(ctx).Warn("no persistent store configured, using in-memory store")
		options = append(options, infra.WithAssetRepository(memory.New()))
	}

	if bqClient, err := x.bigQuery.NewClient(ctx); err != nil {
		return nil, err
	} else if bqClient != nil {
		options = append(options, infra.WithBigQuery(bqClient))
	}

	return usecase.New(infra.New(options...), registry), nil
}
