package postgres

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS owners (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	kind TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS assets (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL,
	data JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS relationships (
	id SERIAL PRIMARY KEY,
	assets_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	owners_id INTEGER NOT NULL REFERENCES owners(id),
	type TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (assets_id, owners_id)
);
`

// New opens a Postgres-backed repository and ensures the schema exists.
func New(ctx context.Context, dsn string) (interfaces.AssetRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres connection")
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, goerr.Wrap(err, "failed to migrate schema")
	}

	return &assetRepository{db: db}, nil
}
