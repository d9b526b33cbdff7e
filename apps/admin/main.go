package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/ledger"
	"github.com/trezcool/masomo-insights/storage"
	"github.com/trezcool/masomo-insights/storage/database"
)

func main() {
	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	cli := commandLine{
		out: os.Stdout,
		openDB: func(ctx context.Context) (*sqlx.DB, error) {
			if conf.Storage.Driver != core.StoragePostgres {
				return nil, errors.Errorf("migrations need the %q storage driver (got %q)", core.StoragePostgres, conf.Storage.Driver)
			}
			return database.Open(ctx, conf)
		},
		openLedger: func(ctx context.Context) (LedgerService, func() error, error) {
			repo, release, err := storage.OpenLedgerRepository(ctx, conf)
			if err != nil {
				return nil, nil, err
			}
			return ledger.NewService(repo, core.NewValidator(), conf), release, nil
		},
	}
	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Printf("error: %s", err)
		}
		os.Exit(1)
	}
}
