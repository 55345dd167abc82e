package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
)

// AssetRepository persists repository snapshots, owner identities, and the
// relationship edges between them.
//
// Invariants the implementations must hold:
//   - Asset names are unique; CreateOrUpdateAsset upserts by name and a
//     duplicate-row state is an error for that repository only.
//   - Owner records are seeded once and never deleted; CreateOwner is
//     idempotent.
//   - At most one relationship exists per (asset, owner) pair;
//     UpsertRelationship updates the type in place.
//   - RemoveStaleAssets deletes an asset together with its relationships.
type AssetRepository interface {
	// Asset operations
	CreateOrUpdateAsset(ctx context.Context, asset *model.Asset) error
	GetAsset(ctx context.Context, name types.RepoName) (*model.Asset, error)
	ListAssets(ctx context.Context) ([]*model.Asset, error)

	// Owner operations
	CreateOwner(ctx context.Context, owner *model.OwnerRecord) error
	GetOwner(ctx context.Context, name types.OwnerName) (*model.OwnerRecord, error)
	ListOwners(ctx context.Context) ([]*model.OwnerRecord, error)

	// Relationship operations
	UpsertRelationship(ctx context.Context, asset types.RepoName, owner types.OwnerName, relType types.RelationType) error
	ListRelationshipsByAsset(ctx context.Context, asset types.RepoName) ([]*model.Relationship, error)

	// RemoveStaleAssets deletes assets whose LastUpdated is before the
	// threshold, along with their relationships.
	RemoveStaleAssets(ctx context.Context, threshold time.Time) error
}
