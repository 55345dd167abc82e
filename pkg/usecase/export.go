package usecase

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/bqs"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/utils/logging"
)

// ComplianceRecord is a compliance report as stored in BigQuery, one row
// per repository per sync.
type ComplianceRecord struct {
	model.ComplianceReport
	// Timestamp is microseconds since epoch, matching the TIMESTAMP column
	// encoding of the storage write API.
	Timestamp int64 `json:"timestamp"`
}

// exportReports appends the current compliance reports to the configured
// BigQuery table, evolving the table schema when the record shape grew.
func (x *UseCase) exportReports(ctx context.Context, now time.Time) error {
	bq := x.clients.BigQuery()

	reports, err := x.ListComplianceReports(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return nil
	}

	records := make([]*ComplianceRecord, len(reports))
	for i, report := range reports {
		records[i] = &ComplianceRecord{
			ComplianceReport: *report,
			Timestamp:        now.UnixMicro(),
		}
	}

	schema, schemaUpdated, err := createOrUpdateReportTable(ctx, bq, records)
	if err != nil {
		return err
	}

	for _, record := range records {
		if err := bq.Insert(ctx, schema, record, interfaces.WithRetry(schemaUpdated)); err != nil {
			return goerr.Wrap(err, "failed to insert compliance record",
				goerr.V("repo", record.Name),
			)
		}
	}

	logging.From(ctx).Info("exported compliance reports", "count", len(records))

	return nil
}

func createOrUpdateReportTable(ctx context.Context, bq interfaces.BigQuery, records []*ComplianceRecord) (bigquery.Schema, bool, error) {
	schema, err := bqs.Infer(records[0])
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to infer record schema")
	}
	for _, record := range records[1:] {
		inferred, err := bqs.Infer(record)
		if err != nil {
			return nil, false, goerr.Wrap(err, "failed to infer record schema", goerr.V("repo", record.Name))
		}
		schema, err = bqs.Merge(schema, inferred)
		if err != nil {
			return nil, false, goerr.Wrap(err, "failed to merge record schemas", goerr.V("repo", record.Name))
		}
	}

	metaData, err := bq.GetMetadata(ctx)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to get table metadata")
	}
	if metaData == nil {
		if err := bq.CreateTable(ctx, &bigquery.TableMetadata{
			Schema: schema,
		}); err != nil {
			return nil, false, goerr.Wrap(err, "failed to create table")
		}
		return schema, false, nil
	}

	if bqs.Equal(metaData.Schema, schema) {
		return schema, false, nil
	}

	mergedSchema, err := bqs.Merge(metaData.Schema, schema)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to merge table schema")
	}
	if err := bq.UpdateTable(ctx, bigquery.TableMetadataToUpdate{
		Schema: mergedSchema,
	}, metaData.ETag); err != nil {
		return nil, false, goerr.Wrap(err, "failed to update table schema")
	}

	return mergedSchema, true, nil
}
