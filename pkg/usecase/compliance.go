package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/utils/logging"
)

// GetComplianceReport evaluates the stored snapshot of one repository. It
// returns repository.ErrNotFound (wrapped) when no snapshot exists.
func (x *UseCase) GetComplianceReport(ctx context.Context, name types.RepoName) (*model.ComplianceReport, error) {
	repo := x.clients.AssetRepository()
	if repo == nil {
		return nil, goerr.Wrap(types.ErrInvalidOption, "asset repository is not configured")
	}

	asset, err := repo.GetAsset(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get asset", goerr.V("repo", name))
	}

	owners, err := repo.ListOwners(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list owners")
	}

	view, err := buildRepositoryView(ctx, repo, asset, owners)
	if err != nil {
		return nil, err
	}

	return model.EvaluateCompliance(view), nil
}

// ListComplianceReports evaluates every stored snapshot. A snapshot whose
// payload cannot be decoded is logged and skipped so one broken row does
// not hide the rest of the estate.
func (x *UseCase) ListComplianceReports(ctx context.Context) ([]*model.ComplianceReport, error) {
	repo := x.clients.AssetRepository()
	if repo == nil {
		return nil, goerr.Wrap(types.ErrInvalidOption, "asset repository is not configured")
	}

	assets, err := repo.ListAssets(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assets")
	}

	owners, err := repo.ListOwners(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list owners")
	}

	reports := make([]*model.ComplianceReport, 0, len(assets))
	for _, asset := range assets {
		view, err := buildRepositoryView(ctx, repo, asset, owners)
		if err != nil {
			logging.From(ctx).Warn("failed to build repository view, skipping",
				"repo", asset.Name,
				"error", err,
			)
			continue
		}
		reports = append(reports, model.EvaluateCompliance(view))
	}

	return reports, nil
}

func buildRepositoryView(ctx context.Context, repo interfaces.AssetRepository, asset *model.Asset, owners []*model.OwnerRecord) (*model.RepositoryView, error) {
	rels, err := repo.ListRelationshipsByAsset(ctx, asset.Name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list relationships", goerr.V("repo", asset.Name))
	}

	view, err := model.NewRepositoryView(asset, rels, owners)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build repository view", goerr.V("repo", asset.Name))
	}

	return view, nil
}
