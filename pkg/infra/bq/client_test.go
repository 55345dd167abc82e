package bq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/bqs"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/utils/testutil"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClient(t *testing.T) {
	projectID := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_PROJECT_ID")
	datasetID := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_DATASET_ID")

	ctx := context.Background()

	tblName := types.BQTableID(time.Now().Format("insert_test_20060102_150405"))
	client, err := New(ctx, types.GoogleProjectID(projectID), types.BQDatasetID(datasetID), tblName)
	gt.NoError(t, err)

	var baseSchema bigquery.Schema

	t.Run("Create base table at first", func(t *testing.T) {
		var report model.ComplianceReport
		baseSchema = gt.R1(bqs.Infer(report)).NoError(t)

		gt.NoError(t, client.CreateTable(ctx, &bigquery.TableMetadata{
			Name:   tblName.String(),
			Schema: baseSchema,
		}))
	})

	t.Run("Insert report record", func(t *testing.T) {
		owner := types.OwnerName("operations-engineering")
		report := model.ComplianceReport{
			Name:                           "test-repo",
			Status:                         types.StatusPass,
			AuthoritativeBusinessUnitOwner: &owner,
			MaturityLevel:                  types.MaturityBaseline,
		}
		dataSchema := gt.R1(bqs.Infer(report)).NoError(t)
		mergedSchema := gt.R1(bqs.Merge(baseSchema, dataSchema)).NoError(t)

		md := gt.R1(client.GetMetadata(ctx)).NoError(t)
		if !bqs.Equal(mergedSchema, baseSchema) {
			gt.NoError(t, client.UpdateTable(ctx, bigquery.TableMetadataToUpdate{
				Schema: mergedSchema,
			}, md.ETag))
		}

		gt.NoError(t, client.Insert(ctx, mergedSchema, report))
	})

	t.Run("GetMetadata on missing table returns nil", func(t *testing.T) {
		missing, err := New(ctx, types.GoogleProjectID(projectID), types.BQDatasetID(datasetID), "non_existent_table_999999")
		gt.NoError(t, err)

		md, err := missing.GetMetadata(ctx)
		gt.NoError(t, err)
		gt.V(t, md).Equal(nil)
	})
}

func TestProtoFieldJSONName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps valid names",
			input: "MaturityLevel",
			want:  "MaturityLevel",
		},
		{
			name:  "renames invalid names",
			input: "ruby-advisory-db",
			want:  "col_cnVieS1hZHZpc29yeS1kYg",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := protoFieldJSONName(tc.input); got != tc.want {
				t.Fatalf("unexpected name: want=%s, got=%s", tc.want, got)
			}
		})
	}
}

func TestSanitizeProtoJSON(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"checks":{"license-is-mit":"pass","default-branch":"fail"}}`)
	sanitized := gt.R1(sanitizeProtoJSON(raw)).NoError(t)

	dec := json.NewDecoder(bytes.NewReader(sanitized))
	dec.UseNumber()
	payload := map[string]any{}
	gt.NoError(t, dec.Decode(&payload))

	checks, ok := payload["checks"].(map[string]any)
	if !ok {
		t.Fatalf("checks not found in %v", payload)
	}

	renamed := protoFieldJSONName("license-is-mit")
	if _, ok := checks[renamed]; !ok {
		t.Fatalf("sanitized key %s not found: %+v", renamed, checks)
	}
	if _, ok := checks["license-is-mit"]; ok {
		t.Fatalf("unexpected original key remains: %+v", checks)
	}
}

func TestIsSchemaNotFoundError(t *testing.T) {
	t.Run("detects gRPC InvalidArgument with schema mismatch message", func(t *testing.T) {
		err := status.Error(codes.InvalidArgument, "Input schema has more fields than BigQuery schema, extra fields: 'field1,field2'")
		gt.True(t, isSchemaNotFoundError(err))
	})

	t.Run("detects wrapped gRPC error with goerr", func(t *testing.T) {
		baseErr := status.Error(codes.InvalidArgument, "Input schema has more fields than BigQuery schema, extra fields: 'field1'")
		wrappedErr := goerr.Wrap(baseErr, "failed to insert")
		gt.True(t, isSchemaNotFoundError(wrappedErr))
	})

	t.Run("returns false for InvalidArgument with different message", func(t *testing.T) {
		err := status.Error(codes.InvalidArgument, "Invalid request parameters")
		gt.False(t, isSchemaNotFoundError(err))
	})

	t.Run("returns false for different gRPC code", func(t *testing.T) {
		err := status.Error(codes.PermissionDenied, "Input schema has more fields than BigQuery schema, extra fields: 'field1'")
		gt.False(t, isSchemaNotFoundError(err))
	})

	t.Run("returns false for non-gRPC error", func(t *testing.T) {
		gt.False(t, isSchemaNotFoundError(errors.New("some other error")))
	})
}
