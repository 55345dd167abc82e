package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

type Owners struct {
	path string
}

func (x *Owners) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "owners-file",
			Usage:       "Path to the YAML owner registry",
			Category:    "Owners",
			Sources:     cli.EnvVars("REPOGOV_OWNERS_FILE"),
			Destination: &x.path,
			Required:    true,
		},
	}
}

// Load reads and validates the owner registry. The file order is the
// precedence order used when several owners qualify as authoritative.
func (x *Owners) Load() (model.OwnerRegistry, error) {
	raw, err := os.ReadFile(filepath.Clean(x.path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read owners file", goerr.V("path", x.path))
	}

	var doc struct {
		Owners model.OwnerRegistry `yaml:"owners"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse owners file", goerr.V("path", x.path))
	}

	if len(doc.Owners) == 0 {
		return nil, goerr.New("owners file defines no owners", goerr.V("path", x.path))
	}
	if err := doc.Owners.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid owner registry", goerr.V("path", x.path))
	}

	return doc.Owners, nil
}

func (x *Owners) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("path", x.path),
	)
}
