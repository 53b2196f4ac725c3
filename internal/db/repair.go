package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// repairStep is a named, additive schema fix for databases that predate the
// versioned baseline. Each step checks its own precondition against the live
// schema and applies only when needed, so the list is safe to run on every
// startup. Steps must never drop or rewrite existing data.
type repairStep struct {
	name   string
	needed func(*sql.DB) (bool, error)
	apply  func(*sql.DB) error
}

func repairSteps() []repairStep {
	return []repairStep{
		{
			name: "property_documents: add document_type column",
			needed: func(db *sql.DB) (bool, error) {
				has, err := columnExists(db, "property_documents", "document_type")
				return !has, err
			},
			apply: func(db *sql.DB) error {
				_, err := db.Exec(`ALTER TABLE property_documents ADD COLUMN document_type TEXT NOT NULL DEFAULT 'General'`)
				return err
			},
		},
		{
			name: "property_maps_links: create table",
			needed: func(db *sql.DB) (bool, error) {
				has, err := tableExists(db, "property_maps_links")
				return !has, err
			},
			apply: func(db *sql.DB) error {
				_, err := db.Exec(`CREATE TABLE property_maps_links (
					id               INTEGER PRIMARY KEY AUTOINCREMENT,
					property_id      INTEGER  NOT NULL REFERENCES properties(id),
					link_title       TEXT     NOT NULL,
					google_maps_link TEXT     NOT NULL DEFAULT '',
					latitude         REAL,
					longitude        REAL,
					created_date     DATETIME NOT NULL DEFAULT (datetime('now'))
				)`)
				return err
			},
		},
		{
			name: "properties: add status column",
			needed: func(db *sql.DB) (bool, error) {
				has, err := columnExists(db, "properties", "status")
				return !has, err
			},
			apply: func(db *sql.DB) error {
				_, err := db.Exec(`ALTER TABLE properties ADD COLUMN status TEXT NOT NULL DEFAULT 'Available'`)
				return err
			},
		},
	}
}

// RunRepairSteps applies the repair steps in order. Errors are logged and the
// remaining steps still run; a failed step must not prevent startup.
func RunRepairSteps(db *sql.DB, logger *slog.Logger) {
	for _, step := range repairSteps() {
		needed, err := step.needed(db)
		if err != nil {
			logger.Warn("schema repair check failed", "step", step.name, "error", err)
			continue
		}
		if !needed {
			continue
		}
		if err := step.apply(db); err != nil {
			logger.Warn("schema repair failed", "step", step.name, "error", err)
			continue
		}
		logger.Info("schema repair applied", "step", step.name)
	}
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}

	return false, rows.Err()
}

func tableExists(db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return true, nil
}
