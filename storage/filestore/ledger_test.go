package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-insights/core/ledger"
)

func TestLedgerRepository(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "ledgers")
	repo, err := NewLedgerRepository(dir)
	require.NoError(t, err)

	t.Run("missing snapshot", func(t *testing.T) {
		records, err := repo.LoadLedger(ctx, "S1")
		require.NoError(t, err)
		assert.Nil(t, records)
	})

	first := []ledger.Record{{StudentNumber: "S1", ModuleName: "Math", Type: "Quiz", Number: 1, Score: 80, AVG: 80, Feedback: ledger.NotAtRisk}}
	second := append(first, ledger.Record{StudentNumber: "S1", ModuleName: "Math", Type: "Quiz", Number: 2, Score: 60, AVG: 70, Feedback: ledger.NotAtRisk})

	t.Run("save and replace", func(t *testing.T) {
		require.NoError(t, repo.SaveLedger(ctx, "S1", first))
		require.NoError(t, repo.SaveLedger(ctx, "S1", second))

		records, err := repo.LoadLedger(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, second, records)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp files must not be left behind")
		assert.Equal(t, "S1.json", entries[0].Name())
	})

	t.Run("persisted field names", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "S1.json"))
		require.NoError(t, err)
		for _, name := range []string{`"Student Number"`, `"Full Name"`, `"Module Name"`, `"Type"`, `"Number"`, `"Score"`, `"AVG"`, `"Feedback"`} {
			assert.Contains(t, string(data), name)
		}
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "S2.json"), []byte(`[{"Score": `), 0o644))
		_, err := repo.LoadLedger(ctx, "S2")
		assert.Error(t, err)
	})

	t.Run("failed write leaves snapshot and no temp file", func(t *testing.T) {
		// a directory squatting on the target path makes the rename fail
		require.NoError(t, os.Mkdir(filepath.Join(dir, "S3.json"), 0o755))
		err := repo.SaveLedger(ctx, "S3", first)
		assert.Error(t, err)

		matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, matches)

		records, err := repo.LoadLedger(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, second, records)
	})
}
