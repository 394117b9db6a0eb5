package storage

import "database/sql"

// migrateV001 creates the posting history schema. Every statement uses
// IF NOT EXISTS so a half-applied database can be migrated again.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id         TEXT PRIMARY KEY,
			fact_id    INTEGER NOT NULL,
			status     TEXT NOT NULL CHECK (status IN ('posted', 'failed')),
			remote_id  TEXT NOT NULL DEFAULT '',
			tries      INTEGER NOT NULL DEFAULT 1 CHECK (tries >= 1),
			warning    TEXT NOT NULL DEFAULT '',
			error      TEXT NOT NULL DEFAULT '',
			text       TEXT NOT NULL DEFAULT '',
			ts         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_attempts_ts ON attempts(ts DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_fact ON attempts(fact_id)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_status_ts ON attempts(status, ts DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
