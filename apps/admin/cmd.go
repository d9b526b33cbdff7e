package main

import (
	"context"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/masomo-insights/core/ledger"
	"github.com/trezcool/masomo-insights/core/table"
)

var (
	termWidthFunc = func() int { // mockable
		w, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return 0
		}
		return w
	}

	errHelp = errors.New("help provided")
)

type (
	LedgerService interface {
		Get(ctx context.Context, studentNumber string) ([]ledger.Record, error)
		Import(ctx context.Context, studentNumber string, tbl table.Table) ([]ledger.Record, error)
	}

	commandLine struct {
		out       io.Writer
		openDB     func(ctx context.Context) (*sqlx.DB, error)
		openLedger func(ctx context.Context) (LedgerService, func() error, error)
	}
)

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Masomo Insights administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and import student ledgers",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	ledgerCmd.AddCommand(
		&cobra.Command{
			Use:   "show STUDENT_NUMBER",
			Short: "Print a student's ledger",
			Args:  cli.exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.showLedger(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "import STUDENT_NUMBER FILE",
			Short: "Merge a .csv or .xlsx ledger file into a student's ledger",
			Args:  cli.exactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.importLedger(cmd.Context(), args[0], args[1])
			},
		},
	)

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate COMMAND [ARGS...]",
			Short: "Run database migrations (up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix)",
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					_ = cmd.Help()
					return errHelp
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.migrate(cmd.Context(), args)
			},
		},
		ledgerCmd,
	)
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	return root
}

func (cli *commandLine) exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			_ = cmd.Help()
			return errHelp
		}
		return nil
	}
}

// run executes the command line; args include the program name.
func (cli *commandLine) run(args []string) error {
	cmd := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
