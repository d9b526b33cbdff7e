package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/ledger"
	inmemdb "github.com/trezcool/masomo-insights/storage/database/inmem"
	testutil "github.com/trezcool/masomo-insights/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	color.NoColor = true
	termWidthFunc = func() int { return 0 }

	conf := testutil.TestConfig()
	svc := ledger.NewService(inmemdb.NewLedgerRepository(inmemdb.Open()), core.NewValidator(), conf)

	var out bytes.Buffer
	return &commandLine{
		out: &out,
		openDB: func(context.Context) (*sqlx.DB, error) {
			return nil, nil
		},
		openLedger: func(context.Context) (LedgerService, func() error, error) {
			return svc, func() error { return nil }, nil
		},
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	origMigrate := migrateFunc
	t.Cleanup(func() { migrateFunc = origMigrate })
	migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})
}

func Test_commandLine_migrateWithoutDB(t *testing.T) {
	cli, _ := setup(t)
	cli.openDB = func(context.Context) (*sqlx.DB, error) {
		return nil, fmt.Errorf("no database")
	}

	runCLITests(t, cli, []cliTest{
		{name: "up", args: []string{"migrate", "up"}, wantErrStr: "opening database: no database"},
	})
}

func Test_commandLine_ledger(t *testing.T) {
	cli, out := setup(t)

	dir := t.TempDir()
	marks := filepath.Join(dir, "marks.csv")
	require.NoError(t, os.WriteFile(marks, testutil.CSV(t, ledger.RequiredColumns,
		[]string{"Jane Doe", "Math", "Test", "2", "80"},
		[]string{"Jane Doe", "Math", "Test", "1", "40"},
	), 0o600))
	notes := filepath.Join(dir, "marks.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o600))

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"ledger"}, wantErr: errHelp},
		{name: "show: no args", args: []string{"ledger", "show"}, wantErr: errHelp},
		{name: "import: missing file arg", args: []string{"ledger", "import", "S1"}, wantErr: errHelp},
		{name: "import: unsupported format", args: []string{"ledger", "import", "S1", notes}, wantErrStr: `unsupported file format: "marks.txt" (expected .csv, .xls or .xlsx)`},
		{name: "import: no such file", args: []string{"ledger", "import", "S1", filepath.Join(dir, "nope.csv")}, wantErr: os.ErrNotExist},
	})

	t.Run("import", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "ledger", "import", "S1", marks}))
		assert.Contains(t, out.String(), "2 rows imported for student S1.")
		assert.Contains(t, out.String(), "At Risk")
		assert.Contains(t, out.String(), "Not at Risk")
	})

	t.Run("show", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "ledger", "show", "S1"}))
		assert.Contains(t, out.String(), "Jane Doe (S1)")
		assert.Contains(t, out.String(), "60.0")
	})

	t.Run("show: unknown student", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "ledger", "show", "S9"}))
		assert.Equal(t, "No data found for student S9.\n", out.String())
	})
}
