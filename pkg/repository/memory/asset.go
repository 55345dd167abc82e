package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/repository"
)

type assetData struct {
	asset *model.Asset

	// keyed by owner name
	relationships map[string]*model.Relationship
}

type ownerData struct {
	owner *model.OwnerRecord
}

type assetRepository struct {
	mu       sync.RWMutex
	assets   map[string]*assetData
	owners   map[string]*ownerData
	ownerSeq int
}

// Asset operations

func (r *assetRepository) CreateOrUpdateAsset(ctx context.Context, asset *model.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := string(asset.Name)
	if data, exists := r.assets[name]; exists {
		data.asset = copyAsset(asset)
	} else {
		r.assets[name] = &assetData{
			asset:         copyAsset(asset),
			relationships: make(map[string]*model.Relationship),
		}
	}

	return nil
}

func (r *assetRepository) GetAsset(ctx context.Context, name types.RepoName) (*model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.assets[string(name)]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "asset not found",
			goerr.V("name", name),
		)
	}

	return copyAsset(data.asset), nil
}

func (r *assetRepository) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := make([]*model.Asset, 0, len(r.assets))
	for _, data := range r.assets {
		assets = append(assets, copyAsset(data.asset))
	}
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Name < assets[j].Name
	})

	return assets, nil
}

// Owner operations

func (r *assetRepository) CreateOwner(ctx context.Context, owner *model.OwnerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Seed is idempotent: an existing owner is left untouched.
	if _, exists := r.owners[string(owner.Name)]; exists {
		return nil
	}

	record := copyOwner(owner)
	record.Seq = r.ownerSeq
	r.ownerSeq++
	r.owners[string(owner.Name)] = &ownerData{owner: record}

	return nil
}

func (r *assetRepository) GetOwner(ctx context.Context, name types.OwnerName) (*model.OwnerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.owners[string(name)]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "owner not found",
			goerr.V("name", name),
		)
	}

	return copyOwner(data.owner), nil
}

func (r *assetRepository) ListOwners(ctx context.Context) ([]*model.OwnerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make([]*model.OwnerRecord, 0, len(r.owners))
	for _, data := range r.owners {
		owners = append(owners, copyOwner(data.owner))
	}
	sort.Slice(owners, func(i, j int) bool {
		return owners[i].Seq < owners[j].Seq
	})

	return owners, nil
}

// Relationship operations

func (r *assetRepository) UpsertRelationship(ctx context.Context, asset types.RepoName, owner types.OwnerName, relType types.RelationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, exists := r.assets[string(asset)]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "asset not found",
			goerr.V("asset", asset),
		)
	}
	if _, exists := r.owners[string(owner)]; !exists {
		return goerr.Wrap(repository.ErrNotFound, "owner not found",
			goerr.V("owner", owner),
		)
	}

	if rel, exists := data.relationships[string(owner)]; exists {
		if rel.Type != relType {
			rel.Type = relType
			rel.UpdatedAt = time.Now()
		}
		return nil
	}

	data.relationships[string(owner)] = &model.Relationship{
		AssetName: asset,
		OwnerName: owner,
		Type:      relType,
		UpdatedAt: time.Now(),
	}

	return nil
}

func (r *assetRepository) ListRelationshipsByAsset(ctx context.Context, asset types.RepoName) ([]*model.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.assets[string(asset)]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "asset not found",
			goerr.V("asset", asset),
		)
	}

	rels := make([]*model.Relationship, 0, len(data.relationships))
	for _, rel := range data.relationships {
		copied := *rel
		rels = append(rels, &copied)
	}
	sort.Slice(rels, func(i, j int) bool {
		oi, oj := r.owners[string(rels[i].OwnerName)], r.owners[string(rels[j].OwnerName)]
		return oi.owner.Seq < oj.owner.Seq
	})

	return rels, nil
}

func (r *assetRepository) RemoveStaleAssets(ctx context.Context, threshold time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, data := range r.assets {
		if data.asset.LastUpdated.Before(threshold) {
			delete(r.assets, name)
		}
	}

	return nil
}

func copyAsset(asset *model.Asset) *model.Asset {
	copied := *asset
	copied.Data = append([]byte(nil), asset.Data...)
	return &copied
}

func copyOwner(owner *model.OwnerRecord) *model.OwnerRecord {
	copied := *owner
	return &copied
}
