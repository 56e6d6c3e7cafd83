package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:optik.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/optik?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  profile TEXT NOT NULL DEFAULT '',
  template_json TEXT NOT NULL,
  answer_key_json TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS batches (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  file_name TEXT NOT NULL DEFAULT '',
  blob_key TEXT NOT NULL DEFAULT '',
  total_lines INTEGER NOT NULL,
  success_count INTEGER NOT NULL,
  needs_review_count INTEGER NOT NULL,
  rejected_count INTEGER NOT NULL,
  average_confidence REAL NOT NULL,
  warnings_json TEXT NOT NULL DEFAULT '[]',
  scored_at INTEGER,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
  batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
  line_no INTEGER NOT NULL,
  student_id TEXT NOT NULL,
  review_status TEXT NOT NULL,
  confidence TEXT NOT NULL,
  record_json TEXT NOT NULL,
  PRIMARY KEY (batch_id, line_no)
);

CREATE TABLE IF NOT EXISTS scores (
  batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
  line_no INTEGER NOT NULL,
  student_id TEXT NOT NULL,
  scaled_score REAL NOT NULL,
  result_json TEXT NOT NULL,
  PRIMARY KEY (batch_id, line_no)
);

CREATE TABLE IF NOT EXISTS event_log (
  offset INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  typ TEXT NOT NULL,                        -- e.g., batch_decoded
  key TEXT NOT NULL,                        -- natural key: batchID
  data TEXT NOT NULL,                       -- JSON payload
  created_at INTEGER NOT NULL
);

`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  profile TEXT NOT NULL DEFAULT '',
  template_json TEXT NOT NULL,
  answer_key_json TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS batches (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  file_name TEXT NOT NULL DEFAULT '',
  blob_key TEXT NOT NULL DEFAULT '',
  total_lines INTEGER NOT NULL,
  success_count INTEGER NOT NULL,
  needs_review_count INTEGER NOT NULL,
  rejected_count INTEGER NOT NULL,
  average_confidence DOUBLE PRECISION NOT NULL,
  warnings_json TEXT NOT NULL DEFAULT '[]',
  scored_at BIGINT,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
  batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
  line_no INTEGER NOT NULL,
  student_id TEXT NOT NULL,
  review_status TEXT NOT NULL,
  confidence TEXT NOT NULL,
  record_json TEXT NOT NULL,
  PRIMARY KEY (batch_id, line_no)
);

CREATE TABLE IF NOT EXISTS scores (
  batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
  line_no INTEGER NOT NULL,
  student_id TEXT NOT NULL,
  scaled_score DOUBLE PRECISION NOT NULL,
  result_json TEXT NOT NULL,
  PRIMARY KEY (batch_id, line_no)
);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

`
