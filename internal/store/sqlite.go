package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/inat-tools/rarities/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Each Put commits
// its own transaction, so durability matches the write-through JSON backend
// without full-file rewrites.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS recency (
	taxon_id       INTEGER PRIMARY KEY,
	observed_at    TEXT NOT NULL DEFAULT '',
	observation_id INTEGER NOT NULL DEFAULT 0,
	observer_login TEXT NOT NULL DEFAULT '',
	scanned_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// NewSQLite opens the cache database at path, configures WAL mode, and
// creates the schema if needed.
func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "sqlite: creating cache directory for %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the backing database location.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Get(ctx context.Context, taxonID int64) (*model.RecencyRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT observed_at, observation_id, observer_login FROM recency WHERE taxon_id = ?`,
		taxonID,
	)

	var rec model.RecencyRecord
	err := row.Scan(&rec.ObservedAt, &rec.ObservationID, &rec.ObserverLogin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get taxon %d", taxonID)
	}
	return &rec, nil
}

func (s *SQLiteStore) Put(ctx context.Context, taxonID int64, rec model.RecencyRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recency (taxon_id, observed_at, observation_id, observer_login, scanned_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(taxon_id) DO UPDATE SET
		   observed_at = excluded.observed_at,
		   observation_id = excluded.observation_id,
		   observer_login = excluded.observer_login,
		   scanned_at = excluded.scanned_at`,
		taxonID, rec.ObservedAt, rec.ObservationID, rec.ObserverLogin, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put taxon %d", taxonID)
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recency`).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: count")
	}
	return n, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recency`)
	return eris.Wrap(err, "sqlite: clear")
}

func (s *SQLiteStore) Flush(_ context.Context) error {
	// Each Put commits; nothing buffered.
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
