package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/cli/config"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func writeOwnersFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "owners.yml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func loadOwners(t *testing.T, path string) *config.Owners {
	t.Helper()
	owners := &config.Owners{}
	cmd := &cli.Command{
		Flags: owners.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), []string{"test", "--owners-file", path}))
	return owners
}

func TestOwnersLoad(t *testing.T) {
	t.Run("loads registry preserving file order", func(t *testing.T) {
		path := writeOwnersFile(t, `
owners:
  - name: operations-engineering
    kind: BUSINESS_UNIT
    teams:
      - operations-engineering
  - name: team-x
    kind: TEAM
    teams:
      - TeamX
      - TeamX-Admins
  - name: team-y
    kind: TEAM
    prefix: teamy-
    teams: []
`)
		registry := gt.R1(loadOwners(t, path).Load()).NoError(t)

		gt.A(t, registry).Length(3)
		gt.V(t, registry[0].Name).Equal("operations-engineering")
		gt.V(t, registry[0].Kind).Equal(types.OwnerKindBusinessUnit)
		gt.V(t, registry[1].Name).Equal("team-x")
		gt.A(t, registry[1].Teams).Length(2)
		gt.V(t, registry[2].Prefix).Equal("teamy-")
	})

	t.Run("rejects duplicate owner names", func(t *testing.T) {
		path := writeOwnersFile(t, `
owners:
  - name: team-x
    kind: TEAM
    teams: [TeamX]
  - name: team-x
    kind: TEAM
    teams: [TeamX2]
`)
		_, err := loadOwners(t, path).Load()
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrInvalidRegistry))
	})

	t.Run("rejects unknown owner kind", func(t *testing.T) {
		path := writeOwnersFile(t, `
owners:
  - name: team-x
    kind: DIVISION
    teams: [TeamX]
`)
		_, err := loadOwners(t, path).Load()
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrInvalidRegistry))
	})

	t.Run("rejects empty file", func(t *testing.T) {
		path := writeOwnersFile(t, "owners: []\n")
		_, err := loadOwners(t, path).Load()
		gt.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := loadOwners(t, "/no/such/owners.yml").Load()
		gt.Error(t, err)
	})
}
