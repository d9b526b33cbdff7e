// Package filestore persists ledger snapshots as one JSON file per student.
package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core/ledger"
)

type LedgerRepository struct {
	dir string
}

var _ ledger.Repository = (*LedgerRepository)(nil) // interface compliance check

// NewLedgerRepository stores snapshots under dir, creating it if needed.
func NewLedgerRepository(dir string) (*LedgerRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}
	return &LedgerRepository{dir: dir}, nil
}

func (repo *LedgerRepository) path(key string) string {
	return filepath.Join(repo.dir, key+".json")
}

func (repo *LedgerRepository) LoadLedger(ctx context.Context, key string) ([]ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(repo.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading snapshot")
	}
	var records []ledger.Record
	if err = json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	if records == nil {
		records = []ledger.Record{}
	}
	return records, nil
}

// SaveLedger writes the snapshot to a temporary file in the same directory, then renames it over the previous one.
func (repo *LedgerRepository) SaveLedger(ctx context.Context, key string, records []ledger.Record) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []ledger.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}

	tmp, err := os.CreateTemp(repo.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), repo.path(key)); err != nil {
		return errors.Wrap(err, "replacing snapshot")
	}
	return nil
}
