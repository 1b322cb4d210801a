package chart

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/tremorview/pkg/model"
)

// TooltipLine is one label/value row of the hover tooltip.
type TooltipLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (l TooltipLine) String() string {
	return l.Label + ": " + l.Value
}

// Tooltip returns the rows for key's tooltip in the configured mode, or nil
// when key has no bar in the latest pass.
func (c *Controller) Tooltip(key string) []TooltipLine {
	s, ok := c.byKey[key]
	if !ok {
		return nil
	}
	return TooltipLines(s, c.opts.Tooltip)
}

// TooltipText joins Tooltip rows one per line.
func (c *Controller) TooltipText(key string) string {
	lines := c.Tooltip(key)
	if len(lines) == 0 {
		return ""
	}
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}

// TooltipLines formats a summary for mode. Max severity has four decimals,
// demographic means none; absent means read "n/a".
func TooltipLines(s model.GroupSummary, mode TooltipMode) []TooltipLine {
	maxLine := TooltipLine{Label: "Max Severity", Value: fmt.Sprintf("%.4f", s.MaxSeverity)}
	switch mode {
	case TooltipSeverity:
		return []TooltipLine{maxLine}
	case TooltipTask:
		return []TooltipLine{
			{Label: "Task", Value: s.TaskName},
			{Label: "Description", Value: s.TaskDescription},
			maxLine,
		}
	default:
		return []TooltipLine{
			maxLine,
			{Label: "Mean Age", Value: s.AvgAge.Format(0)},
			{Label: "Mean Age at Diagnosis", Value: s.AvgAgeAtDiagnosis.Format(0)},
			{Label: "Mean Height", Value: s.AvgHeight.Format(0)},
		}
	}
}
