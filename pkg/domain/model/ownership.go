package model

import (
	"strings"

	"github.com/secmon-lab/repogov/pkg/domain/types"
)

// IsOwnerAuthoritative reports whether the named owner is authoritative
// for the repository: either the owner holds admin access, or the owner
// has some access and no owner at all holds admin access. The fallback
// promotes any-access ownership only in the total absence of admin
// claimants.
func IsOwnerAuthoritative(view *RepositoryView, name types.OwnerName) bool {
	var hasAdmin, hasAny bool
	for _, admin := range view.AdminOwnerNames {
		if admin == name {
			hasAdmin = true
			break
		}
	}
	for _, owner := range view.OwnerNames {
		if owner == name {
			hasAny = true
			break
		}
	}

	return hasAdmin || (hasAny && len(view.AdminOwnerNames) == 0)
}

// AuthoritativeOwner returns the first candidate in pool order for which
// IsOwnerAuthoritative holds, or nil. Two admin owners within one tier is
// a known ambiguity, not an error: pool order decides.
func AuthoritativeOwner(view *RepositoryView, pool []types.OwnerName) *types.OwnerName {
	for _, name := range pool {
		if IsOwnerAuthoritative(view, name) {
			return &name
		}
	}
	return nil
}

// OwnershipResolution is the classified owner sets for one repository,
// each in registry order.
type OwnershipResolution struct {
	AdminOwners []types.OwnerName
	OtherOwners []types.OwnerName
}

// ClassifyOwnerAccess maps one configured owner against a repository's
// access facts. Admin access (direct or via an ancestor team) takes
// precedence and short-circuits; otherwise any access or a matching name
// prefix classifies the owner as OTHER. Team name matching is exact and
// case-sensitive. The zero RelationType return means no relation.
func ClassifyOwnerAccess(facts *RepositoryFacts, owner *Owner) (types.RelationType, bool) {
	if intersects(owner.Teams, facts.Access.TeamsWithAdmin, facts.Access.TeamsWithAdminParents) {
		return types.RelationAdminAccess, true
	}

	prefixMatch := owner.Prefix != "" && strings.HasPrefix(facts.Basic.Name, owner.Prefix)
	if prefixMatch || intersects(owner.Teams, facts.Access.Teams, facts.Access.TeamsParents) {
		return types.RelationOther, true
	}

	return "", false
}

// ResolveOwnership classifies every registry owner against one
// repository's facts.
func ResolveOwnership(facts *RepositoryFacts, registry OwnerRegistry) *OwnershipResolution {
	resolution := &OwnershipResolution{}
	for i := range registry {
		relType, ok := ClassifyOwnerAccess(facts, &registry[i])
		if !ok {
			continue
		}
		switch relType {
		case types.RelationAdminAccess:
			resolution.AdminOwners = append(resolution.AdminOwners, registry[i].Name)
		case types.RelationOther:
			resolution.OtherOwners = append(resolution.OtherOwners, registry[i].Name)
		}
	}
	return resolution
}

func intersects(values []string, lists ...[]string) bool {
	for _, list := range lists {
		for _, candidate := range list {
			for _, value := range values {
				if value == candidate {
					return true
				}
			}
		}
	}
	return false
}
