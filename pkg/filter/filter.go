// Package filter turns the current UI selection into a predicate over records.
package filter

import (
	"github.com/vanderheijden86/tremorview/pkg/model"
)

// AllTasks is the synthetic task option that disables task filtering.
const AllTasks = "All"

// Predicate reports whether a record is visible under the current selection.
type Predicate func(model.Record) bool

// Build returns the predicate for a task and a set of checked conditions.
// AllTasks matches every task. An empty condition set applies no condition
// filter, so the chart never goes blank while the UI has nothing checked.
func Build(task string, conditions map[string]bool) Predicate {
	allTasks := task == AllTasks || task == ""
	anyCondition := !hasChecked(conditions)
	return func(r model.Record) bool {
		if !allTasks && r.TaskName != task {
			return false
		}
		if !anyCondition && !conditions[r.Condition] {
			return false
		}
		return true
	}
}

func hasChecked(conditions map[string]bool) bool {
	for _, on := range conditions {
		if on {
			return true
		}
	}
	return false
}

// Selection is the filter state driven by the task picker and the condition
// checkboxes. The zero value selects all tasks and all conditions.
type Selection struct {
	Task       string
	Conditions map[string]bool
	order      []string
}

// NewSelection returns a selection with every condition in conds checked,
// remembering their order for Checked.
func NewSelection(conds []string) Selection {
	s := Selection{Task: AllTasks}
	return s.CheckAll(conds)
}

// Predicate builds the record predicate for this selection.
func (s Selection) Predicate() Predicate {
	return Build(s.Task, s.Conditions)
}

// WithTask returns a copy with the task replaced.
func (s Selection) WithTask(task string) Selection {
	if task == "" {
		task = AllTasks
	}
	s.Task = task
	return s
}

// CheckAll returns a copy with exactly conds checked.
func (s Selection) CheckAll(conds []string) Selection {
	s.Conditions = make(map[string]bool, len(conds))
	s.order = append([]string(nil), conds...)
	for _, c := range conds {
		s.Conditions[c] = true
	}
	return s
}

// Toggle returns a copy with cond flipped.
func (s Selection) Toggle(cond string) Selection {
	next := make(map[string]bool, len(s.Conditions)+1)
	for k, v := range s.Conditions {
		next[k] = v
	}
	next[cond] = !next[cond]
	s.Conditions = next
	if !contains(s.order, cond) {
		s.order = append(append([]string(nil), s.order...), cond)
	}
	return s
}

// IsChecked reports whether cond is checked.
func (s Selection) IsChecked(cond string) bool {
	return s.Conditions[cond]
}

// Checked lists the checked conditions in the order they were introduced.
func (s Selection) Checked() []string {
	var out []string
	for _, c := range s.order {
		if s.Conditions[c] {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
