package testhelper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/repository"
)

// TestAll runs all test cases for AssetRepository
// This is the main entry point for testing any AssetRepository implementation
func TestAll(t *testing.T, repo interfaces.AssetRepository) {
	t.Run("AssetCRUD", func(t *testing.T) {
		TestAssetCRUD(t, repo)
	})
	t.Run("OwnerSeed", func(t *testing.T) {
		TestOwnerSeed(t, repo)
	})
	t.Run("RelationshipUpsert", func(t *testing.T) {
		TestRelationshipUpsert(t, repo)
	})
	t.Run("StaleSweep", func(t *testing.T) {
		TestStaleSweep(t, repo)
	})
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func testFacts(name string) *model.RepositoryFacts {
	return &model.RepositoryFacts{
		Basic: model.BasicFacts{
			Name:              name,
			Visibility:        "public",
			DefaultBranchName: "main",
		},
		Access: model.AccessFacts{
			TeamsWithAdmin: []string{"some-team"},
		},
	}
}

// TestAssetCRUD tests upsert-by-name and retrieval for Asset
func TestAssetCRUD(t *testing.T, repo interfaces.AssetRepository) {
	ctx := context.Background()

	name := types.RepoName(uniqueName("repo"))
	facts := testFacts(string(name))
	data := gt.R1(facts.Encode()).NoError(t)

	asset := &model.Asset{
		Name:        name,
		Type:        types.AssetTypeRepository,
		LastUpdated: time.Now(),
		Data:        data,
	}
	gt.NoError(t, repo.CreateOrUpdateAsset(ctx, asset))

	retrieved := gt.R1(repo.GetAsset(ctx, name)).NoError(t)
	gt.V(t, retrieved.Name).Equal(name)
	gt.V(t, retrieved.Type).Equal(types.AssetTypeRepository)

	decoded := gt.R1(model.DecodeFacts(retrieved.Data)).NoError(t)
	gt.V(t, decoded.Basic.Name).Equal(string(name))

	// Upsert by name keeps a single row
	facts.Basic.Visibility = "private"
	asset.Data = gt.R1(facts.Encode()).NoError(t)
	asset.LastUpdated = time.Now()
	gt.NoError(t, repo.CreateOrUpdateAsset(ctx, asset))

	updated := gt.R1(repo.GetAsset(ctx, name)).NoError(t)
	decoded = gt.R1(model.DecodeFacts(updated.Data)).NoError(t)
	gt.V(t, decoded.Basic.Visibility).Equal("private")

	assets := gt.R1(repo.ListAssets(ctx)).NoError(t)
	count := 0
	for _, a := range assets {
		if a.Name == name {
			count++
		}
	}
	gt.V(t, count).Equal(1)

	// Unknown asset yields ErrNotFound
	_, err := repo.GetAsset(ctx, types.RepoName(uniqueName("missing")))
	gt.True(t, err != nil)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

// TestOwnerSeed tests idempotent owner creation
func TestOwnerSeed(t *testing.T, repo interfaces.AssetRepository) {
	ctx := context.Background()

	name := types.OwnerName(uniqueName("owner"))
	owner := &model.OwnerRecord{
		Name:      name,
		Kind:      types.OwnerKindBusinessUnit,
		CreatedAt: time.Now(),
	}
	gt.NoError(t, repo.CreateOwner(ctx, owner))

	// Second seed is a no-op, not an error
	gt.NoError(t, repo.CreateOwner(ctx, owner))

	retrieved := gt.R1(repo.GetOwner(ctx, name)).NoError(t)
	gt.V(t, retrieved.Name).Equal(name)
	gt.V(t, retrieved.Kind).Equal(types.OwnerKindBusinessUnit)

	owners := gt.R1(repo.ListOwners(ctx)).NoError(t)
	count := 0
	for _, o := range owners {
		if o.Name == name {
			count++
		}
	}
	gt.V(t, count).Equal(1)

	_, err := repo.GetOwner(ctx, types.OwnerName(uniqueName("missing")))
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

// TestRelationshipUpsert tests the at-most-one-edge-per-pair invariant
func TestRelationshipUpsert(t *testing.T, repo interfaces.AssetRepository) {
	ctx := context.Background()

	assetName := types.RepoName(uniqueName("repo"))
	ownerName := types.OwnerName(uniqueName("owner"))

	facts := testFacts(string(assetName))
	gt.NoError(t, repo.CreateOrUpdateAsset(ctx, &model.Asset{
		Name:        assetName,
		Type:        types.AssetTypeRepository,
		LastUpdated: time.Now(),
		Data:        gt.R1(facts.Encode()).NoError(t),
	}))
	gt.NoError(t, repo.CreateOwner(ctx, &model.OwnerRecord{
		Name:      ownerName,
		Kind:      types.OwnerKindTeam,
		CreatedAt: time.Now(),
	}))

	gt.NoError(t, repo.UpsertRelationship(ctx, assetName, ownerName, types.RelationOther))

	rels := gt.R1(repo.ListRelationshipsByAsset(ctx, assetName)).NoError(t)
	gt.A(t, rels).Length(1)
	gt.V(t, rels[0].Type).Equal(types.RelationOther)

	// Re-evaluation updates the type in place rather than duplicating
	gt.NoError(t, repo.UpsertRelationship(ctx, assetName, ownerName, types.RelationAdminAccess))

	rels = gt.R1(repo.ListRelationshipsByAsset(ctx, assetName)).NoError(t)
	gt.A(t, rels).Length(1)
	gt.V(t, rels[0].Type).Equal(types.RelationAdminAccess)

	// Same type again is a no-op
	gt.NoError(t, repo.UpsertRelationship(ctx, assetName, ownerName, types.RelationAdminAccess))
	rels = gt.R1(repo.ListRelationshipsByAsset(ctx, assetName)).NoError(t)
	gt.A(t, rels).Length(1)

	// Unknown owner is rejected
	err := repo.UpsertRelationship(ctx, assetName, types.OwnerName(uniqueName("missing")), types.RelationOther)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

// TestStaleSweep tests removal of assets older than the threshold
func TestStaleSweep(t *testing.T, repo interfaces.AssetRepository) {
	ctx := context.Background()

	staleName := types.RepoName(uniqueName("stale"))
	freshName := types.RepoName(uniqueName("fresh"))
	ownerName := types.OwnerName(uniqueName("owner"))

	gt.NoError(t, repo.CreateOwner(ctx, &model.OwnerRecord{
		Name:      ownerName,
		Kind:      types.OwnerKindTeam,
		CreatedAt: time.Now(),
	}))

	for _, tc := range []struct {
		name types.RepoName
		age  time.Duration
	}{
		{staleName, 48 * time.Hour},
		{freshName, time.Minute},
	} {
		facts := testFacts(string(tc.name))
		gt.NoError(t, repo.CreateOrUpdateAsset(ctx, &model.Asset{
			Name:        tc.name,
			Type:        types.AssetTypeRepository,
			LastUpdated: time.Now().Add(-tc.age),
			Data:        gt.R1(facts.Encode()).NoError(t),
		}))
		gt.NoError(t, repo.UpsertRelationship(ctx, tc.name, ownerName, types.RelationOther))
	}

	gt.NoError(t, repo.RemoveStaleAssets(ctx, time.Now().Add(-24*time.Hour)))

	_, err := repo.GetAsset(ctx, staleName)
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	// Relationships go with the asset
	_, err = repo.ListRelationshipsByAsset(ctx, staleName)
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	fresh := gt.R1(repo.GetAsset(ctx, freshName)).NoError(t)
	gt.V(t, fresh.Name).Equal(freshName)
}
