package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/types"
)

// Owner is a configured organizational entity. Membership is a list of
// GitHub team names; an optional repository-name prefix acts as a naming
// convention fallback. Owners are defined at deploy time and never mutated
// at runtime.
type Owner struct {
	Name   types.OwnerName `json:"name" yaml:"name"`
	Teams  []string        `json:"teams" yaml:"teams"`
	Prefix string          `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Kind   types.OwnerKind `json:"kind" yaml:"kind"`
}

func (x *Owner) Validate() error {
	if x.Name == "" {
		return goerr.Wrap(types.ErrInvalidRegistry, "owner name is empty")
	}
	if !x.Kind.Validate() {
		return goerr.Wrap(types.ErrInvalidRegistry, "invalid owner kind",
			goerr.V("name", x.Name),
			goerr.V("kind", x.Kind),
		)
	}
	if len(x.Teams) == 0 && x.Prefix == "" {
		return goerr.Wrap(types.ErrInvalidRegistry, "owner has no member teams and no prefix",
			goerr.V("name", x.Name),
		)
	}
	return nil
}

// OwnerRegistry is the ordered list of configured owners. Order is
// significant: when several owners in one tier qualify as authoritative,
// the first in registry order wins.
type OwnerRegistry []Owner

func (x OwnerRegistry) Validate() error {
	seen := make(map[types.OwnerName]struct{}, len(x))
	for i := range x {
		if err := x[i].Validate(); err != nil {
			return err
		}
		if _, ok := seen[x[i].Name]; ok {
			return goerr.Wrap(types.ErrInvalidRegistry, "duplicate owner name",
				goerr.V("name", x[i].Name),
			)
		}
		seen[x[i].Name] = struct{}{}
	}
	return nil
}

// ByKind returns the owners of one classification tier, preserving
// registry order.
func (x OwnerRegistry) ByKind(kind types.OwnerKind) []Owner {
	var owners []Owner
	for i := range x {
		if x[i].Kind == kind {
			owners = append(owners, x[i])
		}
	}
	return owners
}

// Find returns the configured owner with the given name, or nil.
func (x OwnerRegistry) Find(name types.OwnerName) *Owner {
	for i := range x {
		if x[i].Name == name {
			return &x[i]
		}
	}
	return nil
}
