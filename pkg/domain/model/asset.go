package model

import (
	"time"

	"github.com/secmon-lab/repogov/pkg/domain/types"
)

// Asset is the persisted snapshot of one repository. Data is the opaque
// serialized RepositoryFacts payload. An asset is stale when LastUpdated
// is older than the sweep threshold (24 hours).
type Asset struct {
	Name        types.RepoName
	Type        types.AssetType
	LastUpdated time.Time
	Data        []byte
}

// OwnerRecord is the persisted identity of a configured owner. Records are
// seeded idempotently and never deleted. Seq preserves seed order so that
// views can keep registry order without re-reading the configuration.
type OwnerRecord struct {
	Name      types.OwnerName
	Kind      types.OwnerKind
	Seq       int
	CreatedAt time.Time
}

// Relationship is the persisted edge recording an owner's access to an
// asset. At most one relationship exists per (asset, owner) pair;
// re-evaluation updates Type in place.
type Relationship struct {
	AssetName types.RepoName
	OwnerName types.OwnerName
	Type      types.RelationType
	UpdatedAt time.Time
}

// RepositoryView is the read model assembled from one asset plus its
// relationships and the referenced owner records. The name lists preserve
// owner seed order.
type RepositoryView struct {
	Name types.RepoName

	OwnerNames             []types.OwnerName
	AdminOwnerNames        []types.OwnerName
	BusinessUnitOwnerNames []types.OwnerName
	TeamOwnerNames         []types.OwnerName

	Facts *RepositoryFacts
}

// NewRepositoryView builds the view. Relationships referencing an owner
// record that no longer exists are ignored.
func NewRepositoryView(asset *Asset, rels []*Relationship, owners []*OwnerRecord) (*RepositoryView, error) {
	facts, err := DecodeFacts(asset.Data)
	if err != nil {
		return nil, err
	}

	byName := make(map[types.OwnerName]*OwnerRecord, len(owners))
	for _, owner := range owners {
		byName[owner.Name] = owner
	}

	view := &RepositoryView{
		Name:  asset.Name,
		Facts: facts,
	}

	for _, rel := range rels {
		owner, ok := byName[rel.OwnerName]
		if !ok {
			continue
		}

		view.OwnerNames = append(view.OwnerNames, owner.Name)
		if rel.Type == types.RelationAdminAccess {
			view.AdminOwnerNames = append(view.AdminOwnerNames, owner.Name)
		}
		switch owner.Kind {
		case types.OwnerKindBusinessUnit:
			view.BusinessUnitOwnerNames = append(view.BusinessUnitOwnerNames, owner.Name)
		case types.OwnerKindTeam:
			view.TeamOwnerNames = append(view.TeamOwnerNames, owner.Name)
		}
	}

	return view, nil
}
