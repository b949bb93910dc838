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
			dsn = "file:skillforge.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/skillforge?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
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
CREATE TABLE IF NOT EXISTS tests (
  id TEXT PRIMARY KEY,
  test_code TEXT NOT NULL UNIQUE,
  subject TEXT NOT NULL,
  instruction TEXT NOT NULL,
  questions_json TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

-- test_id is a reference by convention only: sheets must survive test
-- deletion so batch scoring can skip them as orphans.
CREATE TABLE IF NOT EXISTS answer_sheets (
  id TEXT PRIMARY KEY,
  uli TEXT NOT NULL,
  test_id TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  submitted_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_answer_sheets_uli ON answer_sheets(uli);

CREATE TABLE IF NOT EXISTS results (
  uli TEXT NOT NULL,
  test_id TEXT NOT NULL,
  test_code TEXT NOT NULL,
  subject TEXT NOT NULL,
  score INTEGER NOT NULL DEFAULT 0,
  total_questions INTEGER NOT NULL DEFAULT 0,
  remarks TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  PRIMARY KEY (uli, test_id)
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  civil_status TEXT NOT NULL DEFAULT '',
  educational_attainment TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS archive (
  seq INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  site_id TEXT NOT NULL DEFAULT 'local',
  entity_type TEXT NOT NULL,             -- e.g. test, result
  entity_key TEXT NOT NULL,              -- natural key of the deleted row
  payload TEXT NOT NULL,                 -- JSON copy of the row
  deleted_by TEXT NOT NULL DEFAULT '',
  deleted_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS tests (
  id TEXT PRIMARY KEY,
  test_code TEXT NOT NULL UNIQUE,
  subject TEXT NOT NULL,
  instruction TEXT NOT NULL,
  questions_json TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

-- test_id is a reference by convention only: sheets must survive test
-- deletion so batch scoring can skip them as orphans.
CREATE TABLE IF NOT EXISTS answer_sheets (
  id TEXT PRIMARY KEY,
  uli TEXT NOT NULL,
  test_id TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  submitted_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_answer_sheets_uli ON answer_sheets(uli);

CREATE TABLE IF NOT EXISTS results (
  uli TEXT NOT NULL,
  test_id TEXT NOT NULL,
  test_code TEXT NOT NULL,
  subject TEXT NOT NULL,
  score INTEGER NOT NULL DEFAULT 0,
  total_questions INTEGER NOT NULL DEFAULT 0,
  remarks TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL,
  PRIMARY KEY (uli, test_id)
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  civil_status TEXT NOT NULL DEFAULT '',
  educational_attainment TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS archive (
  seq BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  entity_type TEXT NOT NULL,
  entity_key TEXT NOT NULL,
  payload TEXT NOT NULL,
  deleted_by TEXT NOT NULL DEFAULT '',
  deleted_at BIGINT NOT NULL
);
`
