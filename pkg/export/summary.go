package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/metrics"
	"github.com/vanderheijden86/tremorview/pkg/model"
	"github.com/vanderheijden86/tremorview/pkg/version"
)

// RobotSummary is the machine-readable description of one chart state.
type RobotSummary struct {
	GeneratedAt     time.Time             `json:"generated_at"`
	Version         string                `json:"version,omitempty"`
	Source          string                `json:"source,omitempty"`
	RecordCount     int                   `json:"record_count"`
	Task            string                `json:"task"`
	TaskDescription string                `json:"task_description"`
	Conditions      []string              `json:"conditions"`
	DomainPolicy    string                `json:"domain_policy"`
	DomainMax       float64               `json:"domain_max"`
	Bars            []RobotBar            `json:"bars"`
	Metrics         []metrics.TimingStats `json:"metrics,omitempty"`
}

// RobotBar is one bar of the summary. Absent demographic means are null.
type RobotBar struct {
	Condition         string   `json:"condition"`
	Color             string   `json:"color"`
	MeanSeverity      float64  `json:"mean_severity"`
	MaxSeverity       float64  `json:"max_severity"`
	Count             int      `json:"count"`
	TaskName          string   `json:"task_name"`
	TaskDescription   string   `json:"task_description"`
	AvgAge            *float64 `json:"avg_age"`
	AvgAgeAtDiagnosis *float64 `json:"avg_age_at_diagnosis"`
	AvgHeight         *float64 `json:"avg_height"`
}

// NewRobotBar converts a summary.
func NewRobotBar(s model.GroupSummary, color string) RobotBar {
	return RobotBar{
		Condition:         s.Condition,
		Color:             color,
		MeanSeverity:      s.MeanSeverity,
		MaxSeverity:       s.MaxSeverity,
		Count:             s.Count,
		TaskName:          s.TaskName,
		TaskDescription:   s.TaskDescription,
		AvgAge:            optionalPtr(s.AvgAge),
		AvgAgeAtDiagnosis: optionalPtr(s.AvgAgeAtDiagnosis),
		AvgHeight:         optionalPtr(s.AvgHeight),
	}
}

func optionalPtr(o model.Optional) *float64 {
	if !o.Usable() {
		return nil
	}
	v := o.Value
	return &v
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteJSONFile writes v as indented JSON to path.
func WriteJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// NewRobotSummary describes the controller's latest pass.
func NewRobotSummary(c *chart.Controller) RobotSummary {
	sel := c.Selection()
	_, hi := c.Scales().Y.Domain()
	s := RobotSummary{
		GeneratedAt:     time.Now().UTC(),
		Version:         version.Version,
		Source:          c.Store().Path(),
		RecordCount:     c.Store().Len(),
		Task:            sel.Task,
		TaskDescription: c.TaskDescription(),
		Conditions:      sel.Checked(),
		DomainPolicy:    c.Options().Policy.String(),
		DomainMax:       hi,
		Bars:            []RobotBar{},
	}
	for _, sum := range c.Summaries() {
		s.Bars = append(s.Bars, NewRobotBar(sum, c.Color(sum.Condition)))
	}
	if metrics.Enabled() {
		s.Metrics = metrics.AllTimingStats()
	}
	return s
}
