package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/repository"
	"github.com/secmon-lab/repogov/pkg/utils/safe"
)

type assetRepository struct {
	db *sql.DB
}

// Asset operations

func (r *assetRepository) CreateOrUpdateAsset(ctx context.Context, asset *model.Asset) error {
	// Writes serialize per repository name: the upsert runs in one
	// transaction keyed by the unique name constraint.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer safe.Rollback(tx)

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets WHERE name = $1`, string(asset.Name),
	).Scan(&count); err != nil {
		return goerr.Wrap(err, "failed to count assets", goerr.V("name", asset.Name))
	}
	if count > 1 {
		return goerr.Wrap(repository.ErrDuplicateRows, "multiple assets share one name",
			goerr.V("name", asset.Name),
			goerr.V("count", count),
		)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO assets (name, type, last_updated, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			type = EXCLUDED.type,
			last_updated = EXCLUDED.last_updated,
			data = EXCLUDED.data`,
		string(asset.Name), string(asset.Type), asset.LastUpdated, asset.Data,
	); err != nil {
		return goerr.Wrap(err, "failed to upsert asset", goerr.V("name", asset.Name))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit asset upsert", goerr.V("name", asset.Name))
	}

	return nil
}

func (r *assetRepository) GetAsset(ctx context.Context, name types.RepoName) (*model.Asset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT name, type, last_updated, data FROM assets WHERE name = $1`,
		string(name),
	)

	asset, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(repository.ErrNotFound, "asset not found", goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get asset", goerr.V("name", name))
	}

	return asset, nil
}

func (r *assetRepository) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, type, last_updated, data FROM assets ORDER BY name`,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assets")
	}
	defer safe.Close(rows)

	var assets []*model.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan asset row")
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate asset rows")
	}

	return assets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*model.Asset, error) {
	var asset model.Asset
	var name, assetType string
	if err := row.Scan(&name, &assetType, &asset.LastUpdated, &asset.Data); err != nil {
		return nil, err
	}
	asset.Name = types.RepoName(name)
	asset.Type = types.AssetType(assetType)
	return &asset, nil
}

// Owner operations

func (r *assetRepository) CreateOwner(ctx context.Context, owner *model.OwnerRecord) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (name, kind, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`,
		string(owner.Name), string(owner.Kind), owner.CreatedAt,
	); err != nil {
		return goerr.Wrap(err, "failed to seed owner", goerr.V("name", owner.Name))
	}

	return nil
}

func (r *assetRepository) GetOwner(ctx context.Context, name types.OwnerName) (*model.OwnerRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT name, kind, id, created_at FROM owners WHERE name = $1`,
		string(name),
	)

	owner, err := scanOwner(row)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(repository.ErrNotFound, "owner not found", goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get owner", goerr.V("name", name))
	}

	return owner, nil
}

func (r *assetRepository) ListOwners(ctx context.Context) ([]*model.OwnerRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, kind, id, created_at FROM owners ORDER BY id`,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list owners")
	}
	defer safe.Close(rows)

	var owners []*model.OwnerRecord
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan owner row")
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate owner rows")
	}

	return owners, nil
}

func scanOwner(row rowScanner) (*model.OwnerRecord, error) {
	var owner model.OwnerRecord
	var name, kind string
	if err := row.Scan(&name, &kind, &owner.Seq, &owner.CreatedAt); err != nil {
		return nil, err
	}
	owner.Name = types.OwnerName(name)
	owner.Kind = types.OwnerKind(kind)
	return &owner, nil
}

// Relationship operations

func (r *assetRepository) UpsertRelationship(ctx context.Context, asset types.RepoName, owner types.OwnerName, relType types.RelationType) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer safe.Rollback(tx)

	var assetID int
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM assets WHERE name = $1`, string(asset),
	).Scan(&assetID); err != nil {
		if err == sql.ErrNoRows {
			return goerr.Wrap(repository.ErrNotFound, "asset not found", goerr.V("asset", asset))
		}
		return goerr.Wrap(err, "failed to look up asset", goerr.V("asset", asset))
	}

	var ownerID int
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM owners WHERE name = $1`, string(owner),
	).Scan(&ownerID); err != nil {
		if err == sql.ErrNoRows {
			return goerr.Wrap(repository.ErrNotFound, "owner not found", goerr.V("owner", owner))
		}
		return goerr.Wrap(err, "failed to look up owner", goerr.V("owner", owner))
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO relationships (assets_id, owners_id, type, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (assets_id, owners_id) DO UPDATE SET
			type = EXCLUDED.type,
			updated_at = now()
		WHERE relationships.type IS DISTINCT FROM EXCLUDED.type`,
		assetID, ownerID, string(relType),
	); err != nil {
		return goerr.Wrap(err, "failed to upsert relationship",
			goerr.V("asset", asset),
			goerr.V("owner", owner),
		)
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit relationship upsert")
	}

	return nil
}

func (r *assetRepository) ListRelationshipsByAsset(ctx context.Context, asset types.RepoName) ([]*model.Relationship, error) {
	if _, err := r.GetAsset(ctx, asset); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT a.name, o.name, rel.type, rel.updated_at
		FROM relationships rel
		JOIN assets a ON a.id = rel.assets_id
		JOIN owners o ON o.id = rel.owners_id
		WHERE a.name = $1
		ORDER BY o.id`,
		string(asset),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list relationships", goerr.V("asset", asset))
	}
	defer safe.Close(rows)

	var rels []*model.Relationship
	for rows.Next() {
		var rel model.Relationship
		var assetName, ownerName, relType string
		if err := rows.Scan(&assetName, &ownerName, &relType, &rel.UpdatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan relationship row")
		}
		rel.AssetName = types.RepoName(assetName)
		rel.OwnerName = types.OwnerName(ownerName)
		rel.Type = types.RelationType(relType)
		rels = append(rels, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate relationship rows")
	}

	return rels, nil
}

func (r *assetRepository) RemoveStaleAssets(ctx context.Context, threshold time.Time) error {
	// Relationships cascade with the asset row.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM assets WHERE last_updated < $1`, threshold,
	); err != nil {
		return goerr.Wrap(err, "failed to remove stale assets")
	}

	return nil
}
