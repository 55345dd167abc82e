package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/repository"
	"github.com/secmon-lab/repogov/pkg/utils/logging"
)

// staleAfter is the age at which an asset not seen by a sync is considered
// deleted or archived upstream and swept away.
const staleAfter = 24 * time.Hour

// SyncRepositories runs one full ingestion pass: seed the configured
// owners, snapshot every repository, re-resolve ownership edges, sweep
// assets not updated within the stale window, and export reports when a
// BigQuery client is configured.
//
// A failure on one repository is logged and does not stop the pass; the
// returned error summarizes how many repositories failed.
func (x *UseCase) SyncRepositories(ctx context.Context) error {
	repo := x.clients.AssetRepository()
	if repo == nil {
		return goerr.Wrap(types.ErrInvalidOption, "asset repository is not configured")
	}
	gh := x.clients.GitHub()
	if gh == nil {
		return goerr.Wrap(types.ErrInvalidOption, "GitHub client is not configured")
	}

	logger := logging.From(ctx)
	now := logging.CtxTime(ctx).UTC()

	if err := x.seedOwners(ctx, now); err != nil {
		return err
	}

	facts, err := gh.ListRepositoryFacts(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list repository facts")
	}

	var succeeded, failed int
	for _, f := range facts {
		if err := x.syncRepository(ctx, f, now); err != nil {
			logger.Error("failed to sync repository",
				"repo", f.Basic.Name,
				"error", err,
			)
			failed++
			continue
		}
		succeeded++
	}

	if err := repo.RemoveStaleAssets(ctx, now.Add(-staleAfter)); err != nil {
		return goerr.Wrap(err, "failed to sweep stale assets")
	}

	logger.Info("repository sync finished",
		"succeeded", succeeded,
		"failed", failed,
		"total", len(facts),
	)

	if x.clients.BigQuery() != nil {
		if err := x.exportReports(ctx, now); err != nil {
			return goerr.Wrap(err, "failed to export compliance reports")
		}
	}

	if failed > 0 {
		return goerr.New("sync completed with failures",
			goerr.V("succeeded", succeeded),
			goerr.V("failed", failed),
		)
	}

	return nil
}

// seedOwners persists the configured owner registry. Seq follows registry
// order so stored views keep the configuration precedence.
func (x *UseCase) seedOwners(ctx context.Context, now time.Time) error {
	repo := x.clients.AssetRepository()
	for i, owner := range x.registry {
		record := &model.OwnerRecord{
			Name:      owner.Name,
			Kind:      owner.Kind,
			Seq:       i,
			CreatedAt: now,
		}
		if err := repo.CreateOwner(ctx, record); err != nil {
			return goerr.Wrap(err, "failed to seed owner", goerr.V("owner", owner.Name))
		}
	}
	return nil
}

func (x *UseCase) syncRepository(ctx context.Context, facts *model.RepositoryFacts, now time.Time) error {
	repo := x.clients.AssetRepository()

	raw, err := facts.Encode()
	if err != nil {
		return err
	}

	asset := &model.Asset{
		Name:        types.RepoName(facts.Basic.Name),
		Type:        types.AssetTypeRepository,
		LastUpdated: now,
		Data:        raw,
	}
	if err := repo.CreateOrUpdateAsset(ctx, asset); err != nil {
		return goerr.Wrap(err, "failed to store asset", goerr.V("repo", asset.Name))
	}

	resolution := model.ResolveOwnership(facts, x.registry)
	if err := x.linkOwners(ctx, asset.Name, resolution.AdminOwners, types.RelationAdminAccess); err != nil {
		return err
	}
	if err := x.linkOwners(ctx, asset.Name, resolution.OtherOwners, types.RelationOther); err != nil {
		return err
	}

	return nil
}

// linkOwners upserts one relationship per resolved owner. An owner that is
// in the registry but missing from the store is logged and skipped rather
// than failing the repository.
func (x *UseCase) linkOwners(ctx context.Context, asset types.RepoName, owners []types.OwnerName, relType types.RelationType) error {
	repo := x.clients.AssetRepository()
	for _, owner := range owners {
		if _, err := repo.GetOwner(ctx, owner); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logging.From(ctx).Warn("resolved owner is not in the store, skipping relationship",
					"asset", asset,
					"owner", owner,
				)
				continue
			}
			return goerr.Wrap(err, "failed to look up owner", goerr.V("owner", owner))
		}

		if err := repo.UpsertRelationship(ctx, asset, owner, relType); err != nil {
			return goerr.Wrap(err, "failed to upsert relationship",
				goerr.V("asset", asset),
				goerr.V("owner", owner),
			)
		}
	}
	return nil
}
