package interfaces

import (
	"context"

	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
)

type UseCase interface {
	// SyncRepositories runs one ingestion pass: seed owners, fetch facts,
	// persist snapshots, resolve and link ownership, sweep stale assets.
	SyncRepositories(ctx context.Context) error

	// GetComplianceReport returns the evaluated report for one repository,
	// or repository.ErrNotFound when no snapshot exists.
	GetComplianceReport(ctx context.Context, name types.RepoName) (*model.ComplianceReport, error)

	ListComplianceReports(ctx context.Context) ([]*model.ComplianceReport, error)
}
