// Package memstore is an in-process records.Store. Records are round-tripped through JSON
// so callers see the same loosely typed values a remote backend would return.
package memstore

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/storage/records"
)

var ErrClosed = errors.New("memstore: database is closed")

type (
	DB struct {
		mu     sync.RWMutex
		tables map[string]*table
		closed bool
	}

	table struct {
		sync.RWMutex
		rows map[int]records.Record
		seq  int
		keys map[string]*records.MutateResponse // create responses by idempotency key
	}
)

var _ records.Store = (*DB)(nil) // interface compliance check

// Open returns an empty process-scoped database.
func Open() (*DB, error) {
	return &DB{tables: make(map[string]*table)}, nil
}

// Close drops every table; any further call fails with ErrClosed.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	db.tables = nil
	db.closed = true
	return nil
}

// Reset empties every table & id sequence.
func (db *DB) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	db.tables = make(map[string]*table)
	return nil
}

func (db *DB) table(name string) (*table, error) {
	db.mu.RLock()
	if db.closed {
		db.mu.RUnlock()
		return nil, ErrClosed
	}
	t, ok := db.tables[name]
	db.mu.RUnlock()
	if ok {
		return t, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrClosed
	}
	if t, ok = db.tables[name]; !ok {
		t = &table{
			rows: make(map[int]records.Record),
			keys: make(map[string]*records.MutateResponse),
		}
		db.tables[name] = t
	}
	return t, nil
}

// clone deep-copies `rec` through JSON.
func clone(rec records.Record) (records.Record, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	var cp records.Record
	if err = json.Unmarshal(b, &cp); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}
	return cp, nil
}

func cloneResponse(resp *records.MutateResponse) (*records.MutateResponse, error) {
	cp := &records.MutateResponse{Success: resp.Success, Message: resp.Message}
	for _, res := range resp.Results {
		if res.Data != nil {
			data, err := clone(res.Data)
			if err != nil {
				return nil, err
			}
			res.Data = data
		}
		cp.Results = append(cp.Results, res)
	}
	return cp, nil
}
