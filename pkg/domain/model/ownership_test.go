package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
)

func TestIsOwnerAuthoritative(t *testing.T) {
	t.Run("admin owner is authoritative", func(t *testing.T) {
		view := &model.RepositoryView{
			OwnerNames:      []types.OwnerName{"team-x", "team-y"},
			AdminOwnerNames: []types.OwnerName{"team-x"},
		}
		gt.True(t, model.IsOwnerAuthoritative(view, "team-x"))
	})

	t.Run("non-admin owner is not authoritative while an admin exists", func(t *testing.T) {
		view := &model.RepositoryView{
			OwnerNames:      []types.OwnerName{"team-x", "team-y"},
			AdminOwnerNames: []types.OwnerName{"team-x"},
		}
		gt.False(t, model.IsOwnerAuthoritative(view, "team-y"))
	})

	t.Run("any-access owner is promoted when no admin exists", func(t *testing.T) {
		view := &model.RepositoryView{
			OwnerNames: []types.OwnerName{"team-y"},
		}
		gt.True(t, model.IsOwnerAuthoritative(view, "team-y"))
	})

	t.Run("unrelated owner is never authoritative", func(t *testing.T) {
		view := &model.RepositoryView{
			OwnerNames: []types.OwnerName{"team-y"},
		}
		gt.False(t, model.IsOwnerAuthoritative(view, "team-z"))
	})
}

func TestAuthoritativeOwner(t *testing.T) {
	t.Run("first qualifying owner in pool order wins", func(t *testing.T) {
		view := &model.RepositoryView{
			OwnerNames:      []types.OwnerName{"team-a", "team-b"},
			AdminOwnerNames: []types.OwnerName{"team-a", "team-b"},
		}
		got := model.AuthoritativeOwner(view, []types.OwnerName{"team-b", "team-a"})
		gt.V(t, got != nil).Equal(true)
		gt.V(t, *got).Equal("team-b")
	})

	t.Run("nil when nobody qualifies", func(t *testing.T) {
		view := &model.RepositoryView{
			OwnerNames:      []types.OwnerName{"team-a"},
			AdminOwnerNames: []types.OwnerName{"team-b"},
		}
		gt.V(t, model.AuthoritativeOwner(view, []types.OwnerName{"team-a"})).Equal(nil)
	})
}

func TestClassifyOwnerAccess(t *testing.T) {
	facts := &model.RepositoryFacts{
		Basic: model.BasicFacts{Name: "tooling-deploy"},
		Access: model.AccessFacts{
			TeamsWithAdmin:        []string{"AdminTeam"},
			TeamsWithAdminParents: []string{"AdminParent"},
			Teams:                 []string{"AdminTeam", "ReadTeam"},
			TeamsParents:          []string{"ReadParent"},
		},
	}

	t.Run("direct admin team", func(t *testing.T) {
		relType, ok := model.ClassifyOwnerAccess(facts, &model.Owner{
			Name: "x", Teams: []string{"AdminTeam"}, Kind: types.OwnerKindTeam,
		})
		gt.True(t, ok)
		gt.V(t, relType).Equal(types.RelationAdminAccess)
	})

	t.Run("admin via ancestor team", func(t *testing.T) {
		relType, ok := model.ClassifyOwnerAccess(facts, &model.Owner{
			Name: "x", Teams: []string{"AdminParent"}, Kind: types.OwnerKindTeam,
		})
		gt.True(t, ok)
		gt.V(t, relType).Equal(types.RelationAdminAccess)
	})

	t.Run("plain access classifies as OTHER", func(t *testing.T) {
		relType, ok := model.ClassifyOwnerAccess(facts, &model.Owner{
			Name: "x", Teams: []string{"ReadTeam"}, Kind: types.OwnerKindTeam,
		})
		gt.True(t, ok)
		gt.V(t, relType).Equal(types.RelationOther)
	})

	t.Run("access via parent of plain team", func(t *testing.T) {
		relType, ok := model.ClassifyOwnerAccess(facts, &model.Owner{
			Name: "x", Teams: []string{"ReadParent"}, Kind: types.OwnerKindTeam,
		})
		gt.True(t, ok)
		gt.V(t, relType).Equal(types.RelationOther)
	})

	t.Run("name prefix classifies as OTHER without team access", func(t *testing.T) {
		relType, ok := model.ClassifyOwnerAccess(facts, &model.Owner{
			Name: "x", Prefix: "tooling-", Kind: types.OwnerKindTeam,
		})
		gt.True(t, ok)
		gt.V(t, relType).Equal(types.RelationOther)
	})

	t.Run("team matching is case-sensitive", func(t *testing.T) {
		_, ok := model.ClassifyOwnerAccess(facts, &model.Owner{
			Name: "x", Teams: []string{"adminteam"}, Kind: types.OwnerKindTeam,
		})
		gt.False(t, ok)
	})

	t.Run("no relation for unrelated owner", func(t *testing.T) {
		_, ok := model.ClassifyOwnerAccess(facts, &model.Owner{
			Name: "x", Teams: []string{"OtherTeam"}, Kind: types.OwnerKindTeam,
		})
		gt.False(t, ok)
	})
}

func TestResolveOwnership(t *testing.T) {
	facts := &model.RepositoryFacts{
		Basic: model.BasicFacts{Name: "service-a"},
		Access: model.AccessFacts{
			TeamsWithAdmin: []string{"TeamA"},
			Teams:          []string{"TeamA", "TeamB"},
		},
	}
	registry := model.OwnerRegistry{
		{Name: "owner-b", Teams: []string{"TeamB"}, Kind: types.OwnerKindTeam},
		{Name: "owner-a", Teams: []string{"TeamA"}, Kind: types.OwnerKindTeam},
		{Name: "owner-c", Teams: []string{"TeamC"}, Kind: types.OwnerKindTeam},
	}

	resolution := model.ResolveOwnership(facts, registry)

	gt.A(t, resolution.AdminOwners).Length(1)
	gt.V(t, resolution.AdminOwners[0]).Equal("owner-a")
	gt.A(t, resolution.OtherOwners).Length(1)
	gt.V(t, resolution.OtherOwners[0]).Equal("owner-b")
}
