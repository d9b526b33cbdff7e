package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-insights/core/ledger"
	testutil "github.com/trezcool/masomo-insights/tests"
)

func TestOpenLedgerRepository(t *testing.T) {
	ctx := context.Background()
	records := []ledger.Record{{StudentNumber: "S1", ModuleName: "Math", Type: "Test", Number: 1, Score: 40, AVG: 40, Feedback: ledger.AtRisk}}

	for _, driver := range []string{"file", "memory"} {
		t.Run(driver, func(t *testing.T) {
			conf := testutil.TestConfig()
			conf.Storage.Driver = driver
			conf.Storage.DataDir = t.TempDir()

			repo, closeRepo, err := OpenLedgerRepository(ctx, conf)
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeRepo()) }()

			require.NoError(t, repo.SaveLedger(ctx, "S1", records))
			got, err := repo.LoadLedger(ctx, "S1")
			require.NoError(t, err)
			assert.Equal(t, records, got)
		})
	}

	t.Run("unknown driver", func(t *testing.T) {
		conf := testutil.TestConfig()
		conf.Storage.Driver = "mongo"
		_, _, err := OpenLedgerRepository(ctx, conf)
		assert.EqualError(t, err, `unknown storage driver "mongo"`)
	})
}
