// Package model defines the measurement records loaded from the tremor
// dataset and the per-condition summaries derived from them.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Optional is a numeric field that may be missing from a row or fail
// numeric conversion.
type Optional struct {
	Value float64
	Valid bool
}

// Some returns a present Optional.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// None returns an absent Optional.
func None() Optional {
	return Optional{}
}

// Usable reports whether the value is present and finite.
func (o Optional) Usable() bool {
	return o.Valid && !math.IsNaN(o.Value) && !math.IsInf(o.Value, 0)
}

// Format renders the value with the given number of decimals, or "n/a".
func (o Optional) Format(decimals int) string {
	if !o.Usable() {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", decimals, o.Value)
}

// Record is one measurement row.
type Record struct {
	Condition      string   `json:"condition"`
	TaskName       string   `json:"task_name"`
	TremorSeverity float64  `json:"tremor_severity"`
	Age            Optional `json:"-"`
	AgeAtDiagnosis Optional `json:"-"`
	Height         Optional `json:"-"`
	PatientGroup   string   `json:"patient_group,omitempty"`
}

// Validate checks the fields every plotted record needs.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Condition) == "" {
		return fmt.Errorf("condition cannot be empty")
	}
	if math.IsNaN(r.TremorSeverity) || math.IsInf(r.TremorSeverity, 0) {
		return fmt.Errorf("tremor_severity must be a finite number")
	}
	if r.TremorSeverity < 0 {
		return fmt.Errorf("tremor_severity cannot be negative: %g", r.TremorSeverity)
	}
	return nil
}

// GroupSummary aggregates all records sharing a condition. Summaries are
// rebuilt on every filter change and never mutated afterwards.
type GroupSummary struct {
	Condition         string   `json:"condition"`
	MeanSeverity      float64  `json:"mean_severity"`
	MaxSeverity       float64  `json:"max_severity"`
	Count             int      `json:"count"`
	TaskName          string   `json:"task_name"`
	TaskDescription   string   `json:"task_description"`
	AvgAge            Optional `json:"-"`
	AvgAgeAtDiagnosis Optional `json:"-"`
	AvgHeight         Optional `json:"-"`
}

// Keys returns the condition keys of summaries in order.
func Keys(summaries []GroupSummary) []string {
	keys := make([]string, len(summaries))
	for i, s := range summaries {
		keys[i] = s.Condition
	}
	return keys
}
