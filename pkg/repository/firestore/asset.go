package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/repository"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionAsset = "asset"
	collectionOwner = "owner"

	// subcollection under each asset document
	collectionRelationship = "relationship"
)

type assetRepository struct {
	client *firestore.Client
}

type assetDoc struct {
	Name        string    `firestore:"name"`
	Type        string    `firestore:"type"`
	LastUpdated time.Time `firestore:"last_updated"`
	Data        []byte    `firestore:"data"`
}

type ownerDoc struct {
	Name      string    `firestore:"name"`
	Kind      string    `firestore:"kind"`
	Seq       int       `firestore:"seq"`
	CreatedAt time.Time `firestore:"created_at"`
}

type relationshipDoc struct {
	AssetName string    `firestore:"asset_name"`
	OwnerName string    `firestore:"owner_name"`
	OwnerSeq  int       `firestore:"owner_seq"`
	Type      string    `firestore:"type"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// Asset operations

func (r *assetRepository) CreateOrUpdateAsset(ctx context.Context, asset *model.Asset) error {
	docRef := r.client.Collection(collectionAsset).Doc(string(asset.Name))

	_, err := docRef.Set(ctx, &assetDoc{
		Name:        string(asset.Name),
		Type:        string(asset.Type),
		LastUpdated: asset.LastUpdated,
		Data:        asset.Data,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create or update asset",
			goerr.V("name", asset.Name),
		)
	}

	return nil
}

func (r *assetRepository) GetAsset(ctx context.Context, name types.RepoName) (*model.Asset, error) {
	snap, err := r.client.Collection(collectionAsset).Doc(string(name)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "asset not found",
				goerr.V("name", name),
			)
		}
		return nil, goerr.Wrap(err, "failed to get asset", goerr.V("name", name))
	}

	var doc assetDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode asset document", goerr.V("name", name))
	}

	return assetFromDoc(&doc), nil
}

func (r *assetRepository) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	iter := r.client.Collection(collectionAsset).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var assets []*model.Asset
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assets")
		}

		var doc assetDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode asset document")
		}
		assets = append(assets, assetFromDoc(&doc))
	}

	return assets, nil
}

func assetFromDoc(doc *assetDoc) *model.Asset {
	return &model.Asset{
		Name:        types.RepoName(doc.Name),
		Type:        types.AssetType(doc.Type),
		LastUpdated: doc.LastUpdated,
		Data:        doc.Data,
	}
}

// Owner operations

func (r *assetRepository) CreateOwner(ctx context.Context, owner *model.OwnerRecord) error {
	docRef := r.client.Collection(collectionOwner).Doc(string(owner.Name))

	// Idempotent seed: Create fails with AlreadyExists when the owner is
	// present, which is not an error here.
	_, err := docRef.Create(ctx, &ownerDoc{
		Name:      string(owner.Name),
		Kind:      string(owner.Kind),
		Seq:       owner.Seq,
		CreatedAt: owner.CreatedAt,
	})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return goerr.Wrap(err, "failed to seed owner", goerr.V("name", owner.Name))
	}

	return nil
}

func (r *assetRepository) GetOwner(ctx context.Context, name types.OwnerName) (*model.OwnerRecord, error) {
	snap, err := r.client.Collection(collectionOwner).Doc(string(name)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "owner not found",
				goerr.V("name", name),
			)
		}
		return nil, goerr.Wrap(err, "failed to get owner", goerr.V("name", name))
	}

	var doc ownerDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode owner document", goerr.V("name", name))
	}

	return ownerFromDoc(&doc), nil
}

func (r *assetRepository) ListOwners(ctx context.Context) ([]*model.OwnerRecord, error) {
	iter := r.client.Collection(collectionOwner).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var owners []*model.OwnerRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate owners")
		}

		var doc ownerDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode owner document")
		}
		owners = append(owners, ownerFromDoc(&doc))
	}

	return owners, nil
}

func ownerFromDoc(doc *ownerDoc) *model.OwnerRecord {
	return &model.OwnerRecord{
		Name:      types.OwnerName(doc.Name),
		Kind:      types.OwnerKind(doc.Kind),
		Seq:       doc.Seq,
		CreatedAt: doc.CreatedAt,
	}
}

// Relationship operations

func (r *assetRepository) UpsertRelationship(ctx context.Context, asset types.RepoName, owner types.OwnerName, relType types.RelationType) error {
	if _, err := r.GetAsset(ctx, asset); err != nil {
		return err
	}
	ownerRecord, err := r.GetOwner(ctx, owner)
	if err != nil {
		return err
	}

	// Document ID is the owner name: one edge per (asset, owner) pair by
	// construction.
	docRef := r.client.Collection(collectionAsset).
		Doc(string(asset)).
		Collection(collectionRelationship).
		Doc(string(owner))

	_, err = docRef.Set(ctx, &relationshipDoc{
		AssetName: string(asset),
		OwnerName: string(owner),
		OwnerSeq:  ownerRecord.Seq,
		Type:      string(relType),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to upsert relationship",
			goerr.V("asset", asset),
			goerr.V("owner", owner),
		)
	}

	return nil
}

func (r *assetRepository) ListRelationshipsByAsset(ctx context.Context, asset types.RepoName) ([]*model.Relationship, error) {
	if _, err := r.GetAsset(ctx, asset); err != nil {
		return nil, err
	}

	iter := r.client.Collection(collectionAsset).
		Doc(string(asset)).
		Collection(collectionRelationship).
		OrderBy("owner_seq", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var rels []*model.Relationship
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate relationships", goerr.V("asset", asset))
		}

		var doc relationshipDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode relationship document")
		}
		rels = append(rels, &model.Relationship{
			AssetName: types.RepoName(doc.AssetName),
			OwnerName: types.OwnerName(doc.OwnerName),
			Type:      types.RelationType(doc.Type),
			UpdatedAt: doc.UpdatedAt,
		})
	}

	return rels, nil
}

func (r *assetRepository) RemoveStaleAssets(ctx context.Context, threshold time.Time) error {
	iter := r.client.Collection(collectionAsset).
		Where("last_updated", "<", threshold).
		Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate stale assets")
		}

		// Delete the relationship subcollection first, then the asset.
		relIter := snap.Ref.Collection(collectionRelationship).Documents(ctx)
		for {
			relSnap, err := relIter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				relIter.Stop()
				return goerr.Wrap(err, "failed to iterate stale relationships")
			}
			if _, err := relSnap.Ref.Delete(ctx); err != nil {
				relIter.Stop()
				return goerr.Wrap(err, "failed to delete stale relationship")
			}
		}
		relIter.Stop()

		if _, err := snap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete stale asset")
		}
	}

	return nil
}
