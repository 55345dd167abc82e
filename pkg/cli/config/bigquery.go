package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/infra/bq"
	"github.com/urfave/cli/v3"
)

type BigQuery struct {
	projectID types.GoogleProjectID
	datasetID types.BQDatasetID
	tableID   types.BQTableID
}

func (x *BigQuery) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bigquery-project-id",
			Usage:       "BigQuery project ID (optional, enables report export)",
			Category:    "BigQuery",
			Sources:     cli.EnvVars("REPOGOV_BIGQUERY_PROJECT_ID"),
			Destination: (*string)(&x.projectID),
		},
		&cli.StringFlag{
			Name:        "bigquery-dataset-id",
			Usage:       "BigQuery dataset ID",
			Category:    "BigQuery",
			Sources:     cli.EnvVars("REPOGOV_BIGQUERY_DATASET_ID"),
			Destination: (*string)(&x.datasetID),
		},
		&cli.StringFlag{
			Name:        "bigquery-table-id",
			Usage:       "BigQuery table ID for compliance reports",
			Category:    "BigQuery",
			Sources:     cli.EnvVars("REPOGOV_BIGQUERY_TABLE_ID"),
			Value:       "compliance_reports",
			Destination: (*string)(&x.tableID),
		},
	}
}

// NewClient returns nil without error when BigQuery is not configured;
// export is optional.
func (x *BigQuery) NewClient(ctx context.Context) (interfaces.BigQuery, error) {
	if x.projectID == "" {
		return nil, nil
	}
	if x.datasetID == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "bigquery-dataset-id is required when bigquery-project-id is set")
	}

	return bq.New(ctx, x.projectID, x.datasetID, x.tableID)
}

func (x *BigQuery) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("projectID", x.projectID),
		slog.Any("datasetID", x.datasetID),
		slog.Any("tableID", x.tableID),
	)
}
