package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/tremorview/pkg/metrics"
	"github.com/vanderheijden86/tremorview/pkg/model"
)

// DataFileEnvVar is the name of the environment variable pointing at the dataset.
const DataFileEnvVar = "TV_DATA"

// PreferredDataNames defines the lookup order for the dataset inside a directory.
var PreferredDataNames = []string{"condition.csv", "tremor.csv", "data.csv"}

// Column names recognised in the CSV header (matched case-insensitively).
const (
	ColCondition      = "condition"
	ColTaskName       = "task_name"
	ColTremorSeverity = "tremor_severity"
	ColAge            = "age"
	ColAgeAtDiagnosis = "age_at_diagnosis"
	ColHeight         = "height"
	ColPatientGroup   = "patient_group"
)

var requiredColumns = []string{ColCondition, ColTaskName, ColTremorSeverity}

// ErrNoDataFile is returned when no dataset can be located.
var ErrNoDataFile = errors.New("no dataset found")

// LoadError wraps any failure that prevents the dataset from being used.
// A load failure halts the pipeline: no partial chart is drawn.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loading dataset: %v", e.Err)
	}
	return fmt.Sprintf("loading dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ResolveDataPath returns the dataset path, respecting TV_DATA.
// An explicit path wins over the env var; a directory is searched with
// FindDataPath.
func ResolveDataPath(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(DataFileEnvVar)
	}
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
		return FindDataPath(cwd)
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return FindDataPath(path)
	}
	return path, nil
}

// FindDataPath locates the dataset CSV in dir. PreferredDataNames win;
// otherwise the first non-empty .csv file is used.
func FindDataPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read data directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") {
			continue
		}
		candidates = append(candidates, name)
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoDataFile, dir)
	}

	for _, preferred := range PreferredDataNames {
		for _, name := range candidates {
			if name == preferred {
				return filepath.Join(dir, name), nil
			}
		}
	}

	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path, nil
		}
	}

	return filepath.Join(dir, candidates[0]), nil
}

// ParseOptions configures the behavior of ParseRecords.
type ParseOptions struct {
	// WarningHandler is called with warning messages (skipped rows,
	// unconvertible optional fields). If nil, warnings are printed to
	// os.Stderr unless TV_ROBOT=1.
	WarningHandler func(string)

	// RecordFilter optionally filters parsed records. Return true to include.
	RecordFilter func(*model.Record) bool
}

// LoadRecordsFromFile reads the dataset from a specific CSV path.
func LoadRecordsFromFile(path string) (*Store, error) {
	return LoadRecordsFromFileWithOptions(path, ParseOptions{})
}

// LoadRecordsFromFileWithOptions reads the dataset with custom options.
func LoadRecordsFromFileWithOptions(path string, opts ParseOptions) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("%w at %s", ErrNoDataFile, path)}
		}
		return nil, &LoadError{Path: path, Err: fmt.Errorf("failed to open dataset: %w", err)}
	}
	defer file.Close()

	records, err := ParseRecordsWithOptions(file, opts)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	store := NewStore(records)
	store.path = path
	return store, nil
}

// ParseRecords parses CSV content into records.
func ParseRecords(r io.Reader) ([]model.Record, error) {
	return ParseRecordsWithOptions(r, ParseOptions{})
}

// ParseRecordsWithOptions parses CSV content with custom options.
//
// Every numeric column arrives as text and is converted explicitly. A row
// whose tremor_severity cannot be converted is skipped; an optional numeric
// field that fails conversion is marked absent and the row is kept.
func ParseRecordsWithOptions(r io.Reader, opts ParseOptions) ([]model.Record, error) {
	defer metrics.Timer(metrics.CSVParse)()

	warn := opts.WarningHandler
	if warn == nil {
		if os.Getenv("TV_ROBOT") == "1" {
			warn = func(string) {}
		} else {
			warn = func(msg string) {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
			}
		}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dataset is empty: missing header row")
		}
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				warn(fmt.Sprintf("skipping malformed CSV on line %d: %v", perr.Line, perr.Err))
				continue
			}
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if isBlankRow(row) {
			continue
		}

		rec, ok := parseRow(row, cols, line, warn)
		if !ok {
			continue
		}
		if opts.RecordFilter != nil && !opts.RecordFilter(&rec) {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

type columnIndex map[string]int

func (c columnIndex) field(row []string, name string) (string, bool) {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

func mapColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		if i == 0 {
			name = string(stripBOM([]byte(name)))
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[key]; dup {
			continue
		}
		cols[key] = i
	}

	var missing []string
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required column(s) %s not found in CSV header. Available columns: %v",
			strings.Join(missing, ", "), header)
	}
	return cols, nil
}

func parseRow(row []string, cols columnIndex, line int, warn func(string)) (model.Record, bool) {
	var rec model.Record
	rec.Condition, _ = cols.field(row, ColCondition)
	rec.TaskName, _ = cols.field(row, ColTaskName)
	rec.PatientGroup, _ = cols.field(row, ColPatientGroup)

	raw, _ := cols.field(row, ColTremorSeverity)
	sev, err := parseNumber(raw)
	if err != nil {
		warn(fmt.Sprintf("skipping line %d: tremor_severity %q is not numeric", line, raw))
		return rec, false
	}
	rec.TremorSeverity = sev

	if err := rec.Validate(); err != nil {
		warn(fmt.Sprintf("skipping invalid record on line %d: %v", line, err))
		return rec, false
	}

	rec.Age = parseOptional(row, cols, ColAge, line, warn)
	rec.AgeAtDiagnosis = parseOptional(row, cols, ColAgeAtDiagnosis, line, warn)
	rec.Height = parseOptional(row, cols, ColHeight, line, warn)
	return rec, true
}

func parseOptional(row []string, cols columnIndex, name string, line int, warn func(string)) model.Optional {
	raw, ok := cols.field(row, name)
	if !ok || raw == "" || strings.EqualFold(raw, "na") || strings.EqualFold(raw, "nan") {
		return model.None()
	}
	v, err := parseNumber(raw)
	if err != nil {
		warn(fmt.Sprintf("line %d: ignoring non-numeric %s %q", line, name, raw))
		return model.None()
	}
	return model.Some(v)
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return v, nil
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
