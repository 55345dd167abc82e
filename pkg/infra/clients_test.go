package infra_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/domain/mock"
	"github.com/secmon-lab/repogov/pkg/infra"
	"github.com/secmon-lab/repogov/pkg/repository/memory"
)

func TestNew(t *testing.T) {
	t.Run("create new clients without options", func(t *testing.T) {
		clients := infra.New()
		// A memory cache is always available as a default
		gt.V(t, clients.Cache() != nil).Equal(true)
		// GitHub, repository and BigQuery are nil without configuration
		gt.V(t, clients.GitHub()).Equal(nil)
		gt.V(t, clients.AssetRepository()).Equal(nil)
		gt.V(t, clients.BigQuery()).Equal(nil)
	})

	t.Run("WithGitHub option sets GitHub client", func(t *testing.T) {
		mockGH := &mock.GitHubClientMock{}
		clients := infra.New(infra.WithGitHub(mockGH))
		gt.V(t, clients.GitHub()).Equal(mockGH)
	})

	t.Run("WithBigQuery option sets BigQuery client", func(t *testing.T) {
		mockBQ := &mock.BigQueryMock{}
		clients := infra.New(infra.WithBigQuery(mockBQ))
		gt.V(t, clients.BigQuery()).Equal(mockBQ)
	})

	t.Run("multiple options can be combined", func(t *testing.T) {
		mockGH := &mock.GitHubClientMock{}
		mockBQ := &mock.BigQueryMock{}
		repo := memory.New()

		clients := infra.New(
			infra.WithGitHub(mockGH),
			infra.WithBigQuery(mockBQ),
			infra.WithAssetRepository(repo),
		)

		gt.V(t, clients.GitHub()).Equal(mockGH)
		gt.V(t, clients.BigQuery()).Equal(mockBQ)
		gt.V(t, clients.AssetRepository()).Equal(repo)
	})
}
