package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core/ledger"
)

const (
	selectLedgerQuery = `SELECT records FROM ledger_snapshots WHERE student_key = $1`
	upsertLedgerQuery = `
INSERT INTO ledger_snapshots (student_key, records, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (student_key) DO UPDATE SET records = EXCLUDED.records, updated_at = EXCLUDED.updated_at`
)

type LedgerRepository struct {
	db *sqlx.DB
}

var _ ledger.Repository = (*LedgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (repo *LedgerRepository) LoadLedger(ctx context.Context, key string) ([]ledger.Record, error) {
	var raw []byte
	if err := repo.db.GetContext(ctx, &raw, selectLedgerQuery, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "selecting snapshot")
	}
	records := make([]ledger.Record, 0)
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	return records, nil
}

func (repo *LedgerRepository) SaveLedger(ctx context.Context, key string, records []ledger.Record) (err error) {
	if records == nil {
		records = []ledger.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, upsertLedgerQuery, key, raw); err != nil {
		return errors.Wrap(err, "upserting snapshot")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing snapshot")
	}
	return nil
}

