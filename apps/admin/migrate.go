package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	db, err := cli.openDB(ctx)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}
	return migrateFunc(db, args[0], args[1:]...)
}
