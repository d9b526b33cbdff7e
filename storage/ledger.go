// Package storage opens the ledger repository selected by the storage.driver setting.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/ledger"
	"github.com/trezcool/masomo-insights/storage/database"
	inmemdb "github.com/trezcool/masomo-insights/storage/database/inmem"
	sqlxrepos "github.com/trezcool/masomo-insights/storage/database/sqlx"
	"github.com/trezcool/masomo-insights/storage/filestore"
)

// OpenLedgerRepository returns the configured ledger repository and a func releasing it.
// The postgres schema is migrated up before use.
func OpenLedgerRepository(ctx context.Context, conf *core.Config) (ledger.Repository, func() error, error) {
	noop := func() error { return nil }

	switch conf.Storage.Driver {
	case core.StorageFile:
		repo, err := filestore.NewLedgerRepository(conf.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, noop, nil

	case core.StorageMemory:
		return inmemdb.NewLedgerRepository(inmemdb.Open()), noop, nil

	case core.StoragePostgres:
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(db, "up"); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlxrepos.NewLedgerRepository(db), db.Close, nil
	}
	return nil, nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
}
