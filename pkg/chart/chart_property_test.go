package chart

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/model"
)

func genRecords(t *rapid.T) []model.Record {
	conds := []string{"ET", "PD", "HC", "DT"}
	tasks := []string{"Relaxed", "TouchNose", "HoldWeight"}
	n := rapid.IntRange(0, 40).Draw(t, "n")
	out := make([]model.Record, n)
	for i := range out {
		out[i] = model.Record{
			Condition:      rapid.SampledFrom(conds).Draw(t, "cond"),
			TaskName:       rapid.SampledFrom(tasks).Draw(t, "task"),
			TremorSeverity: rapid.Float64Range(0, 5).Draw(t, "sev"),
		}
	}
	return out
}

// Whatever sequence of filter events arrives, the live bars always match
// the keys of the latest aggregate.
func TestProperty_BarsTrackLatestAggregate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New(loader.NewStore(genRecords(t)), Options{})
		now := start
		pass := c.Render(now)

		events := rapid.IntRange(1, 20).Draw(t, "events")
		for i := 0; i < events; i++ {
			now = now.Add(time.Duration(rapid.IntRange(0, 700).Draw(t, "gap")) * time.Millisecond)
			switch rapid.IntRange(0, 3).Draw(t, "kind") {
			case 0:
				pass = c.SetTask(now, rapid.SampledFrom(c.Tasks()).Draw(t, "task"))
			case 1:
				if conds := c.Conditions(); len(conds) > 0 {
					pass = c.ToggleCondition(now, rapid.SampledFrom(conds).Draw(t, "toggle"))
				}
			case 2:
				pass = c.CheckAll(now)
			case 3:
				c.HoverStep(now, 1)
			}

			want := model.Keys(pass.Summaries)
			got := c.Keys()
			if fmt.Sprint(got) != fmt.Sprint(want) {
				t.Fatalf("live keys %v, summary keys %v", got, want)
			}
		}

		c.Tick(now.Add(time.Hour))
		var drawn []string
		for _, b := range c.Frame(now.Add(time.Hour)).Bars {
			drawn = append(drawn, b.Key)
		}
		want := model.Keys(pass.Summaries)
		sort.Strings(drawn)
		sort.Strings(want)
		if fmt.Sprint(drawn) != fmt.Sprint(want) {
			t.Fatalf("settled bars %v, want %v", drawn, want)
		}
	})
}
