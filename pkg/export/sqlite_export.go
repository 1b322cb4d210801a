package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/metrics"
	"github.com/vanderheijden86/tremorview/pkg/model"
)

// SQLiteExporter writes the aggregate of one selection, and the records it
// was computed from, to a SQLite database.
type SQLiteExporter struct {
	Store      *loader.Store
	Summaries  []model.GroupSummary
	Task       string
	Conditions []string
	// Colors maps condition to the bar colour (#rrggbb).
	Colors map[string]string
	// Selected reports whether a record passed the filter.
	Selected func(model.Record) bool

	now func() time.Time
}

// NewSQLiteExporter captures the controller's latest pass.
func NewSQLiteExporter(c *chart.Controller) *SQLiteExporter {
	sel := c.Selection()
	colors := make(map[string]string)
	for _, cond := range c.Conditions() {
		colors[cond] = c.Color(cond)
	}
	return &SQLiteExporter{
		Store:      c.Store(),
		Summaries:  c.Summaries(),
		Task:       sel.Task,
		Conditions: sel.Checked(),
		Colors:     colors,
		Selected:   sel.Predicate(),
	}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.ExportDB)()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertSummaries(db); err != nil {
		return fmt.Errorf("insert summaries: %w", err)
	}
	if err := e.insertRecords(db); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	return db.Close()
}

func (e *SQLiteExporter) insertSummaries(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO summaries (position, condition, mean_severity, max_severity, record_count,
			task_name, task_description, avg_age, avg_age_at_diagnosis, avg_height, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range e.Summaries {
		_, err := stmt.Exec(i, s.Condition, s.MeanSeverity, s.MaxSeverity, s.Count,
			s.TaskName, s.TaskDescription,
			nullable(s.AvgAge), nullable(s.AvgAgeAtDiagnosis), nullable(s.AvgHeight),
			e.Colors[s.Condition])
		if err != nil {
			return fmt.Errorf("insert summary %s: %w", s.Condition, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertRecords(db *sql.DB) error {
	if e.Store == nil {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (id, condition, task_name, tremor_severity, age, age_at_diagnosis,
			height, patient_group, selected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range e.Store.All() {
		selected := 0
		if e.Selected == nil || e.Selected(r) {
			selected = 1
		}
		_, err := stmt.Exec(i, r.Condition, r.TaskName, r.TremorSeverity,
			nullable(r.Age), nullable(r.AgeAtDiagnosis), nullable(r.Height),
			r.PatientGroup, selected)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	meta := map[string]string{
		"generated_at":   now().UTC().Format(time.RFC3339),
		"schema_version": strconv.Itoa(SchemaVersion),
		"task":           e.Task,
		"conditions":     strings.Join(e.Conditions, ","),
		"summary_count":  strconv.Itoa(len(e.Summaries)),
	}
	if e.Store != nil {
		meta["record_count"] = strconv.Itoa(e.Store.Len())
		meta["source"] = e.Store.Path()
	}
	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

func nullable(o model.Optional) sql.NullFloat64 {
	return sql.NullFloat64{Float64: o.Value, Valid: o.Usable()}
}
