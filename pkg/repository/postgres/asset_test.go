package postgres_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/repository/postgres"
	"github.com/secmon-lab/repogov/pkg/repository/testhelper"
	"github.com/secmon-lab/repogov/pkg/utils/testutil"
)

func TestPostgresAssetRepository(t *testing.T) {
	dsn := testutil.GetEnvOrSkip(t, "TEST_POSTGRES_DSN")

	ctx := context.Background()
	repo := gt.R1(postgres.New(ctx, dsn)).NoError(t)

	testhelper.TestAll(t, repo)
}
