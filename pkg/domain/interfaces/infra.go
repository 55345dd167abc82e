package interfaces

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/secmon-lab/repogov/pkg/domain/model"
)

// GitHubClient supplies raw repository facts for the organization. A sync
// call returns one RepositoryFacts per repository, repository names
// unique. Implementations may fetch repositories concurrently; all calls
// are reads and safe to retry once on a rate-limit signal.
type GitHubClient interface {
	ListRepositoryFacts(ctx context.Context) ([]*model.RepositoryFacts, error)
}

// Cache is a timestamped external cache with per-entry TTL. Reads are not
// synchronized across processes beyond atomic replace semantics of the
// backend; serving stale-within-TTL data is accepted.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}

type BigQueryInsertOption func(*BigQueryInsertConfig)

type BigQueryInsertConfig struct {
	EnableRetry bool
}

func WithRetry(retry bool) BigQueryInsertOption {
	return func(c *BigQueryInsertConfig) {
		c.EnableRetry = retry
	}
}

type BigQuery interface {
	Insert(ctx context.Context, schema bigquery.Schema, data any, opts ...BigQueryInsertOption) error

	GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error)
	UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error
	CreateTable(ctx context.Context, md *bigquery.TableMetadata) error
}
