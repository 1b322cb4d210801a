package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is bumped whenever a table definition changes.
const SchemaVersion = 1

// CreateSchema creates the summary, record and metadata tables.
func CreateSchema(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"summaries", `
			CREATE TABLE IF NOT EXISTS summaries (
				position INTEGER NOT NULL,
				condition TEXT PRIMARY KEY,
				mean_severity REAL NOT NULL,
				max_severity REAL NOT NULL,
				record_count INTEGER NOT NULL,
				task_name TEXT,
				task_description TEXT,
				avg_age REAL,
				avg_age_at_diagnosis REAL,
				avg_height REAL,
				color TEXT
			)
		`},
		{"records", `
			CREATE TABLE IF NOT EXISTS records (
				id INTEGER PRIMARY KEY,
				condition TEXT NOT NULL,
				task_name TEXT NOT NULL,
				tremor_severity REAL NOT NULL,
				age REAL,
				age_at_diagnosis REAL,
				height REAL,
				patient_group TEXT,
				selected INTEGER NOT NULL DEFAULT 0
			)
		`},
		{"export_meta", `
			CREATE TABLE IF NOT EXISTS export_meta (
				key TEXT PRIMARY KEY,
				value TEXT
			)
		`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s table: %w", s.name, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_records_condition ON records(condition)`,
		`CREATE INDEX IF NOT EXISTS idx_records_task ON records(task_name)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_position ON summaries(position)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the file once all rows are written.
func OptimizeDatabase(db *sql.DB) error {
	for _, pragma := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		// Some pragmas fail depending on build; none are required.
		_, _ = db.Exec(pragma)
	}
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}
