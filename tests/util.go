// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/storage/database"
)

// PrepareDB opens the TEST database, migrates it and empties the ledger table.
// The test is skipped when TEST_DATABASE_HOST is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("TEST_DATABASE_HOST") == "" {
		t.Skip("TEST_DATABASE_HOST not set, skipping database test")
	}
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()

	db, err := database.Open(context.Background(), conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, "up"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	ResetDB(t, db)
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE TABLE ledger_snapshots"); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}

// CSV encodes header and rows as a CSV file.
func CSV(t *testing.T, header []string, rows ...[]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		t.Fatalf("CSV() failed: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("CSV() failed: %v", err)
	}
	return buf.Bytes()
}

// TestConfig returns a configuration with the default thresholds, independent of the environment.
func TestConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Masomo Insights",
		Server: core.ServerConfig{
			BodyLimit:      "10M",
			CORSOrigins:    []string{"*"},
			DisableReqLogs: true,
		},
		Storage: core.StorageConfig{Driver: core.StorageMemory},
		Ledger:  core.LedgerConfig{RiskThreshold: 55},
		Cohort: core.CohortConfig{
			RiskThreshold: 50,
			SummaryColumn: "Final_Score",
			TopPercentile: 0.9,
		},
		Roadmap: core.RoadmapConfig{
			AttendanceMin: 75,
			StudyHoursMin: 10,
			ScoreMin:      50,
		},
	}
}
