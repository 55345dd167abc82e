package mock

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
)

// GitHubClientMock implements interfaces.GitHubClient with a pluggable
// function for tests.
type GitHubClientMock struct {
	ListRepositoryFactsFunc func(ctx context.Context) ([]*model.RepositoryFacts, error)

	ListRepositoryFactsCalls int
}

var _ interfaces.GitHubClient = (*GitHubClientMock)(nil)

func (x *GitHubClientMock) ListRepositoryFacts(ctx context.Context) ([]*model.RepositoryFacts, error) {
	x.ListRepositoryFactsCalls++
	return x.ListRepositoryFactsFunc(ctx)
}

// BigQueryMock implements interfaces.BigQuery and records inserted rows.
type BigQueryMock struct {
	InsertFunc      func(ctx context.Context, schema bigquery.Schema, data any, opts ...interfaces.BigQueryInsertOption) error
	GetMetadataFunc func(ctx context.Context) (*bigquery.TableMetadata, error)
	UpdateTableFunc func(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error
	CreateTableFunc func(ctx context.Context, md *bigquery.TableMetadata) error

	Inserted []any
}

var _ interfaces.BigQuery = (*BigQueryMock)(nil)

func (x *BigQueryMock) Insert(ctx context.Context, schema bigquery.Schema, data any, opts ...interfaces.BigQueryInsertOption) error {
	x.Inserted = append(x.Inserted, data)
	if x.InsertFunc == nil {
		return nil
	}
	return x.InsertFunc(ctx, schema, data, opts...)
}

func (x *BigQueryMock) GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error) {
	if x.GetMetadataFunc == nil {
		return nil, nil
	}
	return x.GetMetadataFunc(ctx)
}

func (x *BigQueryMock) UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error {
	if x.UpdateTableFunc == nil {
		return nil
	}
	return x.UpdateTableFunc(ctx, md, eTag)
}

func (x *BigQueryMock) CreateTable(ctx context.Context, md *bigquery.TableMetadata) error {
	if x.CreateTableFunc == nil {
		return nil
	}
	return x.CreateTableFunc(ctx, md)
}

// UseCaseMock implements interfaces.UseCase with pluggable functions for
// controller tests.
type UseCaseMock struct {
	SyncRepositoriesFunc      func(ctx context.Context) error
	GetComplianceReportFunc   func(ctx context.Context, name types.RepoName) (*model.ComplianceReport, error)
	ListComplianceReportsFunc func(ctx context.Context) ([]*model.ComplianceReport, error)

	SyncRepositoriesCalls int
}

var _ interfaces.UseCase = (*UseCaseMock)(nil)

func (x *UseCaseMock) SyncRepositories(ctx context.Context) error {
	x.SyncRepositoriesCalls++
	if x.SyncRepositoriesFunc == nil {
		return nil
	}
	return x.SyncRepositoriesFunc(ctx)
}

func (x *UseCaseMock) GetComplianceReport(ctx context.Context, name types.RepoName) (*model.ComplianceReport, error) {
	return x.GetComplianceReportFunc(ctx, name)
}

func (x *UseCaseMock) ListComplianceReports(ctx context.Context) ([]*model.ComplianceReport, error) {
	return x.ListComplianceReportsFunc(ctx)
}
