package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-insights/core/ledger"
)

type ledgerRepository struct {
	db *ledgerTable
}

var _ ledger.Repository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *DB) ledger.Repository {
	return &ledgerRepository{db: db.ledger}
}

func (repo *ledgerRepository) LoadLedger(ctx context.Context, key string) ([]ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	records, ok := repo.db.table[key]
	if !ok {
		return nil, nil
	}
	return append(make([]ledger.Record, 0, len(records)), records...), nil
}

func (repo *ledgerRepository) SaveLedger(ctx context.Context, key string, records []ledger.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[key] = append(make([]ledger.Record, 0, len(records)), records...)
	return nil
}
