package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/infra/cache"
	"github.com/urfave/cli/v3"
)

type Cache struct {
	gcsBucket string
	gcsPrefix string
}

func (x *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-gcs-bucket",
			Usage:       "Cloud Storage bucket for the GitHub read cache (optional, in-memory cache is used when unset)",
			Category:    "Cache",
			Sources:     cli.EnvVars("REPOGOV_CACHE_GCS_BUCKET"),
			Destination: &x.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "cache-gcs-prefix",
			Usage:       "Object name prefix for cache entries",
			Category:    "Cache",
			Sources:     cli.EnvVars("REPOGOV_CACHE_GCS_PREFIX"),
			Value:       "repogov/cache/",
			Destination: &x.gcsPrefix,
		},
	}
}

func (x *Cache) NewCache(ctx context.Context) (interfaces.Cache, error) {
	if x.gcsBucket == "" {
		return cache.NewMemory(), nil
	}
	return cache.NewGCS(ctx, x.gcsBucket, x.gcsPrefix)
}

func (x *Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("gcsBucket", x.gcsBucket),
		slog.Any("gcsPrefix", x.gcsPrefix),
	)
}
