// Package inmemdb keeps ledger snapshots in process memory. Data is lost on restart.
package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-insights/core/ledger"
)

type (
	DB struct {
		ledger *ledgerTable
	}

	ledgerTable struct {
		sync.RWMutex
		table map[string][]ledger.Record
	}
)

func Open() *DB {
	return &DB{
		ledger: &ledgerTable{table: make(map[string][]ledger.Record)},
	}
}
