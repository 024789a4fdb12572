package store

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
)

// SchemaVersion is bumped whenever the table layout changes.
const SchemaVersion = 1

var schema = []string{
	`CREATE TABLE IF NOT EXISTS schema_versions (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		source         TEXT NOT NULL,
		created_at     TIMESTAMP NOT NULL,
		samples        INTEGER NOT NULL,
		total_counts   REAL NOT NULL,
		smooth_window  INTEGER NOT NULL,
		min_prominence REAL NOT NULL,
		tolerance      REAL NOT NULL,
		cal_gain       REAL NOT NULL,
		cal_offset     REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS peaks (
		run_id        INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		ordinal       INTEGER NOT NULL,
		idx           INTEGER NOT NULL,
		x             REAL NOT NULL,
		prominence    REAL NOT NULL,
		left_idx      INTEGER,
		right_idx     INTEGER,
		centroid      REAL,
		centroid_err  REAL,
		amplitude     REAL,
		amplitude_err REAL,
		sigma         REAL,
		sigma_err     REAL,
		mu            REAL,
		mu_err        REAL,
		r_squared     REAL,
		error         TEXT,
		PRIMARY KEY (run_id, ordinal)
	)`,
}

func schemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_versions'`).Scan(&exists)
	if err != nil || exists == 0 {
		return 0, err
	}

	var version int
	err = db.QueryRow(`SELECT version FROM schema_versions ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

// migrate creates the schema on a new database. A database written by a
// different schema version is refused rather than rewritten.
func migrate(db *sql.DB, log zerolog.Logger) error {
	version, err := schemaVersion(db)
	if err != nil {
		return fail(ErrSchema, "read_version", err)
	}
	log.Debug().Int("version", version).Msg("current schema version")

	switch version {
	case SchemaVersion:
		return nil
	case 0:
	default:
		return fail(ErrSchema, "check_version", errors.New("database has an incompatible schema version"))
	}

	tx, err := db.Begin()
	if err != nil {
		return fail(ErrSchema, "begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("rollback schema")
			}
		}
	}()

	for _, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fail(ErrSchema, "create_table", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_versions (version) VALUES (?)`, SchemaVersion); err != nil {
		return fail(ErrSchema, "record_version", err)
	}
	if err := tx.Commit(); err != nil {
		return fail(ErrSchema, "commit", err)
	}
	committed = true

	log.Info().Int("version", SchemaVersion).Msg("schema created")
	return nil
}
