package memory

import "github.com/secmon-lab/repogov/pkg/domain/interfaces"

// New creates a new in-memory repository
func New() interfaces.AssetRepository {
	return &assetRepository{
		assets: make(map[string]*assetData),
		owners: make(map[string]*ownerData),
	}
}
