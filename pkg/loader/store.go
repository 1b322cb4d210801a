package loader

import (
	"iter"

	"github.com/vanderheijden86/tremorview/pkg/model"
)

// Store holds the parsed dataset for the lifetime of a session. Records are
// never modified after construction; callers get read-only iteration and
// filtered copies.
type Store struct {
	records []model.Record
	path    string
}

// NewStore copies records into a new Store.
func NewStore(records []model.Record) *Store {
	owned := make([]model.Record, len(records))
	copy(owned, records)
	return &Store{records: owned}
}

// Path returns the file the store was loaded from, if any.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// All iterates over the records in load order.
func (s *Store) All() iter.Seq2[int, model.Record] {
	return func(yield func(int, model.Record) bool) {
		for i, r := range s.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Filter returns a new slice with the records matching keep, in load order.
func (s *Store) Filter(keep func(model.Record) bool) []model.Record {
	out := make([]model.Record, 0, len(s.records))
	for _, r := range s.records {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// TaskNames returns the distinct task names in first-occurrence order.
func (s *Store) TaskNames() []string {
	return distinct(s.records, func(r model.Record) string { return r.TaskName })
}

// Conditions returns the distinct conditions in first-occurrence order.
func (s *Store) Conditions() []string {
	return distinct(s.records, func(r model.Record) string { return r.Condition })
}

// MaxSeverity returns the largest tremor_severity in the store, or 0 when empty.
func (s *Store) MaxSeverity() float64 {
	var max float64
	for _, r := range s.records {
		if r.TremorSeverity > max {
			max = r.TremorSeverity
		}
	}
	return max
}

func distinct(records []model.Record, key func(model.Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		k := key(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
