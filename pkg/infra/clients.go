package infra

import (
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/infra/cache"
)

// Clients bundles the external dependencies of the use cases. Unset
// clients stay nil; the use case treats a nil BigQuery client as "export
// disabled" while GitHub and the asset repository are mandatory and
// checked at startup.
type Clients struct {
	githubClient interfaces.GitHubClient
	assetRepo    interfaces.AssetRepository
	bqClient     interfaces.BigQuery
	cacheClient  interfaces.Cache
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{
		cacheClient: cache.NewMemory(),
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) GitHub() interfaces.GitHubClient {
	return x.githubClient
}
func (x *Clients) AssetRepository() interfaces.AssetRepository {
	return x.assetRepo
}
func (x *Clients) BigQuery() interfaces.BigQuery {
	return x.bqClient
}
func (x *Clients) Cache() interfaces.Cache {
	return x.cacheClient
}

func WithGitHub(client interfaces.GitHubClient) Option {
	return func(x *Clients) {
		x.githubClient = client
	}
}

func WithAssetRepository(repo interfaces.AssetRepository) Option {
	return func(x *Clients) {
		x.assetRepo = repo
	}
}

func WithBigQuery(client interfaces.BigQuery) Option {
	return func(x *Clients) {
		x.bqClient = client
	}
}

func WithCache(c interfaces.Cache) Option {
	return func(x *Clients) {
		x.cacheClient = c
	}
}
