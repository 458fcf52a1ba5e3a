// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb keeps the append-only history of committed ledger
// operations, queryable per owner. The history is advisory; the ledger
// state itself lives in the state package.
package eventdb

import (
	"database/sql"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stakepoint/stakepoint/stakepoint"
)

const opTableSchema = `CREATE TABLE IF NOT EXISTS op (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	kind TEXT NOT NULL,
	owner BLOB(20) NOT NULL,
	amount TEXT NOT NULL,
	points TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS op_owner ON op(owner);`

// Event is one committed ledger operation.
type Event struct {
	Seq    int64
	Time   int64
	Kind   string
	Owner  stakepoint.Address
	Amount uint64
	Points uint64
}

// EventDB is the operation history db.
type EventDB struct {
	path string
	db   *sql.DB
}

// New create or open event db at the given path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(opTableSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &EventDB{path, db}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	// shared cache so every pooled connection sees the same db
	return New("file::memory:?cache=shared")
}

// Path returns the path of the db file.
func (edb *EventDB) Path() string {
	return edb.path
}

// Append records one committed operation.
// Amounts are stored as decimal text, sqlite integers are signed 64-bit.
func (edb *EventDB) Append(ev *Event) error {
	_, err := edb.db.Exec(
		"INSERT INTO op(ts, kind, owner, amount, points) VALUES(?,?,?,?,?)",
		ev.Time, ev.Kind, ev.Owner.Bytes(),
		strconv.FormatUint(ev.Amount, 10), strconv.FormatUint(ev.Points, 10))
	return err
}

// QueryByOwner returns up to limit events of the given owner starting
// at offset, newest first.
func (edb *EventDB) QueryByOwner(owner stakepoint.Address, offset, limit uint64) ([]*Event, error) {
	rows, err := edb.db.Query(
		"SELECT seq, ts, kind, owner, amount, points FROM op WHERE owner = ? ORDER BY seq DESC LIMIT ? OFFSET ?",
		owner.Bytes(), int64(limit), int64(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev     Event
			owner  []byte
			amount string
			points string
		)
		if err := rows.Scan(&ev.Seq, &ev.Time, &ev.Kind, &owner, &amount, &points); err != nil {
			return nil, err
		}
		ev.Owner = stakepoint.BytesToAddress(owner)
		if ev.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
			return nil, err
		}
		if ev.Points, err = strconv.ParseUint(points, 10, 64); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// Close closes the db.
func (edb *EventDB) Close() error {
	return edb.db.Close()
}
