// Package aggregate groups filtered records by condition and computes the
// per-group statistics plotted as bars.
package aggregate

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/tremorview/pkg/metrics"
	"github.com/vanderheijden86/tremorview/pkg/model"
)

type group struct {
	first     model.Record
	severity  []float64
	age       []float64
	ageAtDiag []float64
	height    []float64
}

// Aggregate returns one summary per distinct condition, ordered by the first
// occurrence of the condition in records. That order decides bar placement.
//
// Auxiliary means only use members where the field is present and finite;
// a group where no member has the field gets an absent mean.
func Aggregate(records []model.Record) []model.GroupSummary {
	defer metrics.Timer(metrics.Aggregate)()

	index := make(map[string]int)
	var groups []*group
	for _, r := range records {
		i, ok := index[r.Condition]
		if !ok {
			i = len(groups)
			index[r.Condition] = i
			groups = append(groups, &group{first: r})
		}
		g := groups[i]
		g.severity = append(g.severity, r.TremorSeverity)
		g.age = appendUsable(g.age, r.Age)
		g.ageAtDiag = appendUsable(g.ageAtDiag, r.AgeAtDiagnosis)
		g.height = appendUsable(g.height, r.Height)
	}

	out := make([]model.GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, model.GroupSummary{
			Condition:         g.first.Condition,
			MeanSeverity:      stat.Mean(g.severity, nil),
			MaxSeverity:       floats.Max(g.severity),
			Count:             len(g.severity),
			TaskName:          g.first.TaskName,
			TaskDescription:   model.DescribeTask(g.first.TaskName),
			AvgAge:            mean(g.age),
			AvgAgeAtDiagnosis: mean(g.ageAtDiag),
			AvgHeight:         mean(g.height),
		})
	}
	return out
}

// MaxMean returns the largest MeanSeverity across summaries, or 0.
func MaxMean(summaries []model.GroupSummary) float64 {
	var max float64
	for _, s := range summaries {
		if s.MeanSeverity > max {
			max = s.MeanSeverity
		}
	}
	return max
}

func appendUsable(dst []float64, v model.Optional) []float64 {
	if !v.Usable() {
		return dst
	}
	return append(dst, v.Value)
}

func mean(xs []float64) model.Optional {
	if len(xs) == 0 {
		return model.None()
	}
	return model.Some(stat.Mean(xs, nil))
}
