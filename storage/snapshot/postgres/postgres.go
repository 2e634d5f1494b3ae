// Package postgres persists the store snapshot as a single-row blob in a
// Postgres table, for deployments where local disk does not survive restarts.
package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         int PRIMARY KEY,
	data       jsonb NOT NULL,
	updated_at timestamptz NOT NULL
)`

// The snapshot is global state, so a fixed row id keeps the upsert trivial.
const snapshotID = 1

type Persister struct {
	db *sqlx.DB
}

var _ store.Persister = (*Persister)(nil)

// Open connects to databaseURL and ensures the snapshots table exists. The
// database is pinged with backoff so the app can start before Postgres does.
func Open(databaseURL string) (*Persister, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	if _, err = db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "creating snapshots table")
	}
	return &Persister{db: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func (p *Persister) Save(data []byte) error {
	_, err := p.db.Exec(
		`INSERT INTO snapshots (id, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		snapshotID, data, time.Now().UTC(),
	)
	return errors.Wrap(err, "saving snapshot")
}

func (p *Persister) Load() ([]byte, error) {
	var data []byte
	err := p.db.Get(&data, `SELECT data FROM snapshots WHERE id = $1`, snapshotID)
	if err == sql.ErrNoRows {
		return nil, store.ErrNoSnapshot
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading snapshot")
	}
	return data, nil
}

func (p *Persister) Close() error {
	return p.db.Close()
}
